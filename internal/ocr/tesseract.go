package ocr

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"

	"visionassist/pkg/models"
)

// TesseractRecognizer implements Recognizer with a local Tesseract install.
// A fresh gosseract client is created per frame; clients are not shared
// between goroutines.
type TesseractRecognizer struct {
	language string
}

// NewTesseractRecognizer returns a local engine for the given traineddata
// language ("eng" when empty).
func NewTesseractRecognizer(language string) *TesseractRecognizer {
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{language: language}
}

// Name implements Recognizer.
func (t *TesseractRecognizer) Name() string { return EngineTesseract }

// Recognize implements Recognizer. Word boxes are best effort: if Tesseract
// cannot produce them the text is still returned with no blocks.
func (t *TesseractRecognizer) Recognize(ctx context.Context, image io.Reader) (*models.RecognizedText, error) {
	const op = "Recognize"
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, WrapRecognitionError(op, EngineTesseract, err, "")
	}

	content, err := io.ReadAll(image)
	if err != nil {
		return nil, WrapRecognitionError(op, EngineTesseract, err, "failed to read image data")
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return nil, WrapRecognitionError(op, EngineTesseract, ErrInvalidConfiguration, "failed to set language "+t.language)
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return nil, WrapRecognitionError(op, EngineTesseract, ErrInvalidImage, err.Error())
	}

	text, err := client.Text()
	if err != nil {
		return nil, WrapRecognitionError(op, EngineTesseract, ErrRecognitionFailed, err.Error())
	}

	result := &models.RecognizedText{
		Text:   text,
		Engine: EngineTesseract,
	}

	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		result.Blocks = make([]models.TextBlock, 0, len(boxes))
		for _, box := range boxes {
			if box.Word == "" {
				continue
			}
			result.Blocks = append(result.Blocks, models.TextBlock{
				Text:       box.Word,
				Confidence: float32(box.Confidence / 100.0),
				Bounds: models.Bounds{
					X1: box.Box.Min.X,
					Y1: box.Box.Min.Y,
					X2: box.Box.Max.X,
					Y2: box.Box.Max.Y,
				},
			})
		}
		result.Confidence = models.MeanConfidence(result.Blocks)
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// Close implements Recognizer. Tesseract clients are per call, so there is
// nothing to release.
func (t *TesseractRecognizer) Close() error { return nil }
