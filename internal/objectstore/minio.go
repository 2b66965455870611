package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/abduss/filemeta/internal/metadata"
	"github.com/abduss/filemeta/internal/upload"
)

// MinIOClient is the subset of *minio.Client used by the adapter.
type MinIOClient interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedPostPolicy(ctx context.Context, p *minio.PostPolicy) (*url.URL, map[string]string, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// MinIO adapts a MinIO client to the metadata and upload collaborator contracts.
type MinIO struct {
	client MinIOClient
	bucket string
	now    func() time.Time
}

// NewMinIO constructs an adapter.
func NewMinIO(client MinIOClient, bucket string) *MinIO {
	return &MinIO{client: client, bucket: bucket, now: time.Now}
}

func (m *MinIO) Describe(ctx context.Context, container, objectName string) (metadata.ObjectAttributes, error) {
	info, err := m.client.StatObject(ctx, container, objectName, minio.StatObjectOptions{})
	if err != nil {
		return metadata.ObjectAttributes{}, fmt.Errorf("stat object %s/%s: %w", container, objectName, err)
	}
	return metadata.ObjectAttributes{
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

func (m *MinIO) PresignUpload(ctx context.Context, bucket, objectName string, ttl time.Duration) (upload.Authorization, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(bucket); err != nil {
		return upload.Authorization{}, fmt.Errorf("post policy bucket: %w", err)
	}
	if err := policy.SetKey(objectName); err != nil {
		return upload.Authorization{}, fmt.Errorf("post policy key: %w", err)
	}
	if err := policy.SetExpires(m.now().UTC().Add(ttl)); err != nil {
		return upload.Authorization{}, fmt.Errorf("post policy expiry: %w", err)
	}

	u, fields, err := m.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return upload.Authorization{}, fmt.Errorf("presign post policy: %w", err)
	}
	return upload.Authorization{URL: u.String(), Fields: fields}, nil
}

func (m *MinIO) Ping(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", m.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", m.bucket)
	}
	return nil
}
