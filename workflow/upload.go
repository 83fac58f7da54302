package workflow

import (
	"bytes"
	"context"

	"github.com/dripmax/dripmax-go/storage"
)

const uploadContentType = "image/jpeg"

// uploadWithRetry pushes the compressed image bytes to object storage,
// retrying transient failures with linear backoff up to the configured
// attempt cap.
func uploadWithRetry(ctx context.Context, objects storage.ObjectStore, opts Options, key string, data []byte) (string, error) {
	var publicURL string
	attempts, err := retryLinear(ctx, opts.MaxUploadAttempts, opts.UploadBackoff, opts.Sleep,
		func(ctx context.Context) error {
			url, uerr := objects.Upload(ctx, key, bytes.NewReader(data), uploadContentType)
			if uerr == nil {
				publicURL = url
			}
			return uerr
		})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &UploadError{Attempts: attempts, Err: err}
	}
	return publicURL, nil
}
