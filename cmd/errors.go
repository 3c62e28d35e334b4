package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"visionassist/internal/actions"
	"visionassist/internal/ocr"
)

// handleScanError provides user-friendly error messages for scan failures
func handleScanError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Scan failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("text recognition timed out. Try increasing --timeout or using a smaller image")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("text recognition was canceled")
	case errors.Is(err, ocr.ErrImageTooLarge):
		return fmt.Errorf("image is too large. Raise MAX_IMAGE_BYTES or resize the image: %w", err)
	case errors.Is(err, ocr.ErrInvalidImage):
		return fmt.Errorf("invalid or corrupted image. Supported formats are JPEG, PNG, GIF, TIFF and BMP")
	case errors.Is(err, ocr.ErrInvalidConfiguration):
		return fmt.Errorf("OCR engine is not configured correctly: %w", err)
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "invalid_rapt") ||
		strings.Contains(errStr, "auth:") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n" +
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path:\n" +
			"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
			"2. Or set GOOGLE_CREDENTIALS with inline JSON:\n" +
			"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n" +
			"3. If using Application Default Credentials, run:\n" +
			"   gcloud auth application-default login\n\n" +
			"4. Or switch to local recognition with OCR_ENGINE=tesseract\n\n" +
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account can call the configured OCR API")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud quota exceeded. Check your project quotas in the Google Cloud Console")
	case strings.Contains(errStr, "tessdata") ||
		strings.Contains(errStr, "traineddata"):
		return fmt.Errorf("Tesseract language data not found. Install the data for TESSERACT_LANGUAGE or set TESSDATA_PREFIX: %w", err)
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return fmt.Errorf("text recognition failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("text recognition failed: %w", err)
	}
}

// handleActionError explains why a quick action could not run
func handleActionError(err error, s actions.Suggestion, log zerolog.Logger) error {
	log.Error().
		Err(err).
		Str("action", s.Effect.Kind.String()).
		Msg("Action failed")

	switch {
	case errors.Is(err, actions.ErrUnsupportedEffect):
		return fmt.Errorf("%q cannot be performed on this system (%s)", s.Label, s.Effect.URI())
	case s.Effect.Kind == actions.EffectCopy:
		return fmt.Errorf("failed to copy to clipboard. On Linux install xclip or xsel: %w", err)
	default:
		return fmt.Errorf("failed to open %s: %w", s.Effect.URI(), err)
	}
}
