package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a local image path that is missing or not a decodable
// image.
var ErrInvalidInput = errors.New("image path is not a readable image")

// UploadError reports that the object upload failed after exhausting every
// retry attempt.
type UploadError struct {
	Attempts int
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RecordCreationError reports that the backend write for a new record failed.
// It is never retried; the caller decides whether to resubmit.
type RecordCreationError struct {
	Err error
}

func (e *RecordCreationError) Error() string {
	return fmt.Sprintf("record creation failed: %v", e.Err)
}

func (e *RecordCreationError) Unwrap() error { return e.Err }

// AnalysisError reports that the synchronous garment analysis failed.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("garment analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
