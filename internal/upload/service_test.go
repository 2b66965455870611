package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presignCall struct {
	bucket, objectName string
	ttl                time.Duration
}

type fakePresigner struct {
	calls []presignCall
	err   error
}

func (f *fakePresigner) PresignUpload(ctx context.Context, bucket, objectName string, ttl time.Duration) (Authorization, error) {
	f.calls = append(f.calls, presignCall{bucket: bucket, objectName: objectName, ttl: ttl})
	if f.err != nil {
		return Authorization{}, f.err
	}
	return Authorization{
		URL:    "https://" + bucket + ".s3.amazonaws.com/",
		Fields: map[string]string{"key": objectName, "policy": "p", "x-amz-signature": "sig"},
	}, nil
}

func TestAuthorizePresignsRequestedObject(t *testing.T) {
	presigner := &fakePresigner{}
	svc := NewService(presigner, "file-uploads", 0)

	auth, err := svc.Authorize(context.Background(), "reports/q3.pdf")
	require.NoError(t, err)

	assert.Equal(t, "reports/q3.pdf", auth.Fields["key"])
	assert.NotEmpty(t, auth.URL)
	require.Len(t, presigner.calls, 1)
	assert.Equal(t, presignCall{bucket: "file-uploads", objectName: "reports/q3.pdf", ttl: DefaultTTL}, presigner.calls[0])
}

func TestAuthorizeDefaultsEmptyName(t *testing.T) {
	presigner := &fakePresigner{}
	svc := NewService(presigner, "file-uploads", 15*time.Minute)

	auth, err := svc.Authorize(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultObjectName, auth.Fields["key"])
	assert.Equal(t, 15*time.Minute, presigner.calls[0].ttl)
}

func TestAuthorizeRejectsOverlongName(t *testing.T) {
	presigner := &fakePresigner{}
	svc := NewService(presigner, "file-uploads", 0)

	_, err := svc.Authorize(context.Background(), strings.Repeat("a", maxObjectNameBytes+1))
	assert.ErrorIs(t, err, ErrObjectNameTooLong)
	assert.Empty(t, presigner.calls)

	_, err = svc.Authorize(context.Background(), strings.Repeat("a", maxObjectNameBytes))
	assert.NoError(t, err)
}

func TestAuthorizeWrapsPresignFailure(t *testing.T) {
	cause := errors.New("no credentials")
	svc := NewService(&fakePresigner{err: cause}, "file-uploads", 0)

	_, err := svc.Authorize(context.Background(), "a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"a.txt"`)
}

func TestResolveObjectName(t *testing.T) {
	cases := []struct {
		name  string
		path  string
		query string
		body  string
		want  string
	}{
		{name: "path wins", path: "/photos/cat.png", query: "q.txt", body: `{"filename":"b.txt"}`, want: "photos/cat.png"},
		{name: "query before body", query: "q.txt", body: `{"filename":"b.txt"}`, want: "q.txt"},
		{name: "body", body: `{"filename":"b.txt"}`, want: "b.txt"},
		{name: "bare slash path", path: "/", body: `{"filename":"b.txt"}`, want: "b.txt"},
		{name: "invalid body", body: `filename=b.txt`, want: DefaultObjectName},
		{name: "body without filename", body: `{"name":"b.txt"}`, want: DefaultObjectName},
		{name: "nothing", want: DefaultObjectName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body []byte
			if tc.body != "" {
				body = []byte(tc.body)
			}
			assert.Equal(t, tc.want, ResolveObjectName(tc.path, tc.query, body))
		})
	}
}
