package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/abduss/filemeta/internal/metadata"
	"github.com/abduss/filemeta/internal/upload"
)

// S3Client defines the S3 operations used by the adapter.
type S3Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// PostPresigner issues presigned POST requests.
type PostPresigner interface {
	PresignPostObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error)
}

// S3 adapts an S3 client to the metadata and upload collaborator contracts.
type S3 struct {
	client    S3Client
	presigner PostPresigner
	bucket    string
}

// NewS3 wraps client; bucket is the upload bucket checked by Ping.
func NewS3(client *s3.Client, bucket string) *S3 {
	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

// Describe returns the content type and last-modified time of an object.
func (s *S3) Describe(ctx context.Context, container, objectName string) (metadata.ObjectAttributes, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return metadata.ObjectAttributes{}, fmt.Errorf("head object %s/%s: %w", container, objectName, err)
	}

	return metadata.ObjectAttributes{
		ContentType:  aws.ToString(head.ContentType),
		LastModified: aws.ToTime(head.LastModified),
	}, nil
}

// PresignUpload returns a presigned POST for objectName valid for ttl.
func (s *S3) PresignUpload(ctx context.Context, bucket, objectName string, ttl time.Duration) (upload.Authorization, error) {
	req, err := s.presigner.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectName),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = ttl
	})
	if err != nil {
		return upload.Authorization{}, fmt.Errorf("presign post object: %w", err)
	}

	return upload.Authorization{URL: req.URL, Fields: req.Values}, nil
}

// Ping checks that the upload bucket is reachable.
func (s *S3) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("head bucket %q: %w", s.bucket, err)
	}
	return nil
}
