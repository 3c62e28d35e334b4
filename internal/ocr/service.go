// Package ocr turns camera frames into recognized text.
//
// Three engines are available behind the Recognizer interface:
//   - tesseract: local recognition through gosseract, word-level boxes
//   - vision: Google Cloud Vision TEXT_DETECTION, word-level boxes
//   - documentai: Google Document AI OCR processor, block-level boxes
//
// Frames are normalized with Preprocess before recognition: EXIF
// orientation is applied, the image is optionally converted to grayscale
// and downscaled, and the result is re-encoded as PNG. All engines receive
// the same normalized bytes, so reported boxes refer to the preprocessed
// image dimensions.
//
// Credentials for the Google engines are resolved from the environment:
//   - GOOGLE_CREDENTIALS: inline service account JSON, OR
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file
//   - neither: Application Default Credentials
package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"

	"visionassist/pkg/models"
)

// Engine names accepted by NewRecognizer.
const (
	EngineTesseract  = "tesseract"
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

// Recognizer extracts text from a single image.
type Recognizer interface {
	// Recognize runs OCR on an encoded image (PNG, JPEG, ...).
	Recognize(ctx context.Context, image io.Reader) (*models.RecognizedText, error)

	// Name returns the engine name for logging and reports.
	Name() string

	// Close releases engine resources.
	Close() error
}

// Config selects and configures an engine.
type Config struct {
	Engine string

	// TesseractLanguage is the traineddata language code, e.g. "eng".
	TesseractLanguage string

	// Document AI processor coordinates.
	ProjectID   string
	Location    string
	ProcessorID string
}

// NewRecognizer builds the engine named by cfg.Engine.
func NewRecognizer(ctx context.Context, cfg Config) (Recognizer, error) {
	const op = "NewRecognizer"

	switch strings.ToLower(cfg.Engine) {
	case "", EngineTesseract:
		return NewTesseractRecognizer(cfg.TesseractLanguage), nil
	case EngineVision:
		return NewVisionRecognizer(ctx)
	case EngineDocumentAI:
		return NewDocumentAIRecognizer(ctx, DocumentAIConfig{
			ProjectID:   cfg.ProjectID,
			Location:    cfg.Location,
			ProcessorID: cfg.ProcessorID,
		})
	default:
		return nil, WrapRecognitionError(op, cfg.Engine, ErrUnsupportedEngine,
			fmt.Sprintf("choose one of %s, %s, %s", EngineTesseract, EngineVision, EngineDocumentAI))
	}
}
