package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultObjectName is used when the caller names no object.
	DefaultObjectName = "unnamed-file"
	// DefaultTTL is how long an authorization stays valid.
	DefaultTTL = time.Hour

	maxObjectNameBytes = 1024
)

// Authorization is a presigned POST: the form target and the fields to submit with the file.
type Authorization struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// Presigner issues presigned POST policies for a single object.
type Presigner interface {
	PresignUpload(ctx context.Context, bucket, objectName string, ttl time.Duration) (Authorization, error)
}

// Service issues time-limited upload authorizations for one bucket.
type Service struct {
	presigner Presigner
	bucket    string
	ttl       time.Duration
}

// NewService constructs a Service. A non-positive ttl means DefaultTTL.
func NewService(presigner Presigner, bucket string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		presigner: presigner,
		bucket:    bucket,
		ttl:       ttl,
	}
}

// Authorize presigns an upload of objectName into the service bucket.
func (s *Service) Authorize(ctx context.Context, objectName string) (Authorization, error) {
	if objectName == "" {
		objectName = DefaultObjectName
	}
	if len(objectName) > maxObjectNameBytes {
		return Authorization{}, ErrObjectNameTooLong
	}

	auth, err := s.presigner.PresignUpload(ctx, s.bucket, objectName, s.ttl)
	if err != nil {
		return Authorization{}, fmt.Errorf("presign upload for %q: %w", objectName, err)
	}
	return auth, nil
}

// ResolveObjectName picks the object name from the URL path, then the
// filename query parameter, then a JSON body {"filename": ...}. It returns
// DefaultObjectName when none of them name an object.
func ResolveObjectName(path, queryFilename string, body []byte) string {
	if name := strings.TrimLeft(path, "/"); name != "" {
		return name
	}
	if queryFilename != "" {
		return queryFilename
	}
	if len(body) > 0 {
		var payload struct {
			Filename string `json:"filename"`
		}
		// An unreadable body names nothing.
		if err := json.Unmarshal(body, &payload); err == nil && payload.Filename != "" {
			return payload.Filename
		}
	}
	return DefaultObjectName
}
