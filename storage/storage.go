package storage

import (
	"context"
	"io"
)

// ObjectStore is the narrow slice of an object storage service the capture
// workflows need. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Upload writes body under key and returns the object's public URL.
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// PresignedURL returns a time-limited GET URL for key, suitable for
	// handing to external services that fetch the image themselves.
	PresignedURL(ctx context.Context, key string) (string, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
