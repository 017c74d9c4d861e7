package objectstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cuesynth/internal/services"
)

// Content types used when persisting rendered tracks.
const (
	ContentTypeVTT  = "text/vtt"
	ContentTypeJSON = "application/json"
)

// Store is the object persistence boundary. Put returns the stored key as an
// opaque confirmation.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Closer is implemented by stores holding resources.
type Closer interface {
	Close() error
}

// CleanKey normalizes an object key to slash-separated form and rejects keys
// that would escape the bucket.
func CleanKey(key string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	trimmed = strings.TrimLeft(trimmed, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty object key", services.ErrValidation)
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: object key %q escapes bucket", services.ErrValidation, key)
	}
	return cleaned, nil
}

func validateBucket(bucket string) error {
	b := strings.TrimSpace(bucket)
	if b == "" || b == "." || b == ".." || strings.ContainsAny(b, "/\\") {
		return fmt.Errorf("%w: invalid bucket %q", services.ErrValidation, bucket)
	}
	return nil
}

func notFound(bucket, key string) error {
	return fmt.Errorf("%w: %s/%s", services.ErrNotFound, bucket, key)
}

func normalizePrefix(prefix string) string {
	return strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(prefix), "\\", "/"), "/")
}
