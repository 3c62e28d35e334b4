package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrImageTooLarge is returned when an encoded frame exceeds the configured size limit.
	ErrImageTooLarge = errors.New("image exceeds the maximum size limit")

	// ErrInvalidImage is returned when frame bytes cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid or corrupted image")

	// ErrRecognitionFailed is returned when the OCR engine fails to process the image.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrMissingCredentials is returned when a cloud engine cannot find
	// GOOGLE_CREDENTIALS, GOOGLE_APPLICATION_CREDENTIALS or default credentials.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrUnsupportedEngine is returned for an unknown engine name.
	ErrUnsupportedEngine = errors.New("unsupported OCR engine")

	// ErrInvalidConfiguration is returned when required engine settings are missing.
	ErrInvalidConfiguration = errors.New("invalid OCR engine configuration")
)

// RecognitionError wraps errors with the operation and engine that failed.
type RecognitionError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewVisionRecognizer").
	Op string

	// Engine is the engine name, when known.
	Engine string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	prefix := "ocr"
	if e.Engine != "" {
		prefix = "ocr/" + e.Engine
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s failed: %s: %v", prefix, e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", prefix, e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RecognitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapRecognitionError wraps err as a RecognitionError unless it already is one.
func WrapRecognitionError(op, engine string, err error, details string) error {
	if err == nil {
		return nil
	}

	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		return err
	}

	return &RecognitionError{
		Op:      op,
		Engine:  engine,
		Err:     err,
		Details: details,
	}
}
