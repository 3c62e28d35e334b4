package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"visionassist/pkg/models"
)

// DocumentAIConfig holds the coordinates of a Document AI OCR processor.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string // "us", "eu", ...
	ProcessorID string

	// Timeout bounds a single ProcessDocument call. Default: 30 seconds.
	Timeout time.Duration
}

// DocumentAIRecognizer implements Recognizer with a Document AI OCR processor.
type DocumentAIRecognizer struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAIRecognizer creates the engine with credentials from environment.
func NewDocumentAIRecognizer(ctx context.Context, config DocumentAIConfig) (Recognizer, error) {
	const op = "NewDocumentAIRecognizer"

	if config.ProjectID == "" {
		return nil, WrapRecognitionError(op, EngineDocumentAI, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapRecognitionError(op, EngineDocumentAI, ErrInvalidConfiguration, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	clientOptions, explicit := googleClientOptions()
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if !explicit {
			return nil, WrapRecognitionError(op, EngineDocumentAI, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapRecognitionError(op, EngineDocumentAI, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIRecognizer{client: client, config: config}, nil
}

// Name implements Recognizer.
func (d *DocumentAIRecognizer) Name() string { return EngineDocumentAI }

func (d *DocumentAIRecognizer) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
}

// Recognize implements Recognizer. The frame must be PNG, as produced by Preprocess.
func (d *DocumentAIRecognizer) Recognize(ctx context.Context, image io.Reader) (*models.RecognizedText, error) {
	const op = "Recognize"
	startTime := time.Now()

	content, err := io.ReadAll(image)
	if err != nil {
		return nil, WrapRecognitionError(op, EngineDocumentAI, err, "failed to read image data")
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.ProcessDocument(processCtx, &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: "image/png",
			},
		},
	})
	if err != nil {
		return nil, d.handleProcessingError(op, err)
	}
	if resp.GetDocument() == nil {
		return nil, WrapRecognitionError(op, EngineDocumentAI, ErrRecognitionFailed, "no document in response")
	}

	result := parseDocument(resp.GetDocument())
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// handleProcessingError maps gRPC failures onto package errors.
func (d *DocumentAIRecognizer) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapRecognitionError(op, EngineDocumentAI, ErrInvalidImage, "image format not supported or corrupted")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapRecognitionError(op, EngineDocumentAI, ErrInvalidConfiguration, fmt.Sprintf("processor not found: %s", d.config.ProcessorID))
	case strings.Contains(errStr, "context deadline exceeded"):
		return WrapRecognitionError(op, EngineDocumentAI, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "context canceled"):
		return WrapRecognitionError(op, EngineDocumentAI, context.Canceled, "processing canceled")
	default:
		return WrapRecognitionError(op, EngineDocumentAI, ErrRecognitionFailed, fmt.Sprintf("ProcessDocument failed: %v", err))
	}
}

// parseDocument turns page blocks into TextBlocks, scaling normalized
// vertices by the page dimension when absolute vertices are absent.
func parseDocument(doc *documentaipb.Document) *models.RecognizedText {
	result := &models.RecognizedText{
		Text:   doc.GetText(),
		Engine: EngineDocumentAI,
	}

	pages := doc.GetPages()
	if len(pages) == 0 {
		return result
	}
	page := pages[0]
	width := page.GetDimension().GetWidth()
	height := page.GetDimension().GetHeight()
	result.ImageWidth = int(width)
	result.ImageHeight = int(height)

	for _, block := range page.GetBlocks() {
		layout := block.GetLayout()
		text := strings.TrimSpace(anchorText(doc.GetText(), layout.GetTextAnchor()))
		if text == "" {
			continue
		}
		result.Blocks = append(result.Blocks, models.TextBlock{
			Text:       text,
			Confidence: layout.GetConfidence(),
			Bounds:     layoutBounds(layout.GetBoundingPoly(), width, height),
		})
	}
	result.Confidence = models.MeanConfidence(result.Blocks)
	return result
}

func anchorText(text string, anchor *documentaipb.Document_TextAnchor) string {
	var sb strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := int(seg.GetStartIndex()), int(seg.GetEndIndex())
		if start < 0 || end > len(text) || start >= end {
			continue
		}
		sb.WriteString(text[start:end])
	}
	return sb.String()
}

func layoutBounds(poly *documentaipb.BoundingPoly, width, height float32) models.Bounds {
	var xs, ys []int
	if vs := poly.GetVertices(); len(vs) > 0 {
		for _, v := range vs {
			xs = append(xs, int(v.GetX()))
			ys = append(ys, int(v.GetY()))
		}
	} else {
		for _, v := range poly.GetNormalizedVertices() {
			xs = append(xs, int(v.GetX()*width))
			ys = append(ys, int(v.GetY()*height))
		}
	}
	if len(xs) == 0 {
		return models.Bounds{}
	}
	b := models.Bounds{X1: xs[0], Y1: ys[0], X2: xs[0], Y2: ys[0]}
	for i := 1; i < len(xs); i++ {
		b.X1 = min(b.X1, xs[i])
		b.Y1 = min(b.Y1, ys[i])
		b.X2 = max(b.X2, xs[i])
		b.Y2 = max(b.Y2, ys[i])
	}
	return b
}

// Close closes the underlying Document AI client.
func (d *DocumentAIRecognizer) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
