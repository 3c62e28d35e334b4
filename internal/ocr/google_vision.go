package ocr

import (
	"context"
	"fmt"
	"io"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"

	"visionassist/pkg/models"
)

// VisionRecognizer implements Recognizer using Google Cloud Vision API.
type VisionRecognizer struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionRecognizer creates a Cloud Vision engine with credentials from environment.
func NewVisionRecognizer(ctx context.Context) (Recognizer, error) {
	const op = "NewVisionRecognizer"

	opts, explicit := googleClientOptions()
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		if !explicit {
			return nil, WrapRecognitionError(op, EngineVision, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapRecognitionError(op, EngineVision, err, "failed to create image annotator client")
	}

	return &VisionRecognizer{client: client}, nil
}

// NewVisionRecognizerWithClient wraps an existing client (for testing).
func NewVisionRecognizerWithClient(client *vision.ImageAnnotatorClient) Recognizer {
	return &VisionRecognizer{client: client}
}

// Name implements Recognizer.
func (v *VisionRecognizer) Name() string { return EngineVision }

// Recognize implements Recognizer.
func (v *VisionRecognizer) Recognize(ctx context.Context, image io.Reader) (*models.RecognizedText, error) {
	const op = "Recognize"
	startTime := time.Now()

	content, err := io.ReadAll(image)
	if err != nil {
		return nil, WrapRecognitionError(op, EngineVision, err, "failed to read image data")
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: content},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapRecognitionError(op, EngineVision, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapRecognitionError(op, EngineVision, ErrRecognitionFailed, "no response from Vision API")
	}

	result, err := parseVisionResponse(resp.Responses[0])
	if err != nil {
		return nil, WrapRecognitionError(op, EngineVision, err, "failed to process Vision API response")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// parseVisionResponse converts one image annotation into RecognizedText.
// The first text annotation is the whole text; the rest are words.
func parseVisionResponse(resp *visionpb.AnnotateImageResponse) (*models.RecognizedText, error) {
	if resp.GetError() != nil {
		return nil, fmt.Errorf("%w: Vision API error: %s", ErrRecognitionFailed, resp.GetError().GetMessage())
	}

	result := &models.RecognizedText{Engine: EngineVision}

	annotations := resp.GetTextAnnotations()
	if full := resp.GetFullTextAnnotation(); full != nil {
		result.Text = full.GetText()
		if pages := full.GetPages(); len(pages) > 0 {
			result.ImageWidth = int(pages[0].GetWidth())
			result.ImageHeight = int(pages[0].GetHeight())
		}
	} else if len(annotations) > 0 {
		result.Text = annotations[0].GetDescription()
	}

	if len(annotations) > 1 {
		result.Blocks = make([]models.TextBlock, 0, len(annotations)-1)
		for _, word := range annotations[1:] {
			if word.GetDescription() == "" {
				continue
			}
			result.Blocks = append(result.Blocks, models.TextBlock{
				Text:       word.GetDescription(),
				Confidence: word.GetConfidence(),
				Bounds:     polyBounds(word.GetBoundingPoly().GetVertices()),
			})
		}
	}
	result.Confidence = models.MeanConfidence(result.Blocks)

	return result, nil
}

func polyBounds(vertices []*visionpb.Vertex) models.Bounds {
	if len(vertices) == 0 {
		return models.Bounds{}
	}
	b := models.Bounds{
		X1: int(vertices[0].GetX()), Y1: int(vertices[0].GetY()),
		X2: int(vertices[0].GetX()), Y2: int(vertices[0].GetY()),
	}
	for _, v := range vertices[1:] {
		x, y := int(v.GetX()), int(v.GetY())
		b.X1 = min(b.X1, x)
		b.Y1 = min(b.Y1, y)
		b.X2 = max(b.X2, x)
		b.Y2 = max(b.Y2, y)
	}
	return b
}

// Close closes the underlying Vision client.
func (v *VisionRecognizer) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
