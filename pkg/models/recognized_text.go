package models

import (
	"strings"
	"time"
)

// Bounds is a pixel-space bounding box in the processed image.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Width returns the box width.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the box height.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// TextBlock is one recognized element (word or block, depending on engine)
// with its location.
type TextBlock struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"` // 0.0 to 1.0, 0 when the engine reports none
	Bounds     Bounds  `json:"bounds"`
}

// RecognizedText is what an OCR engine produced for one image.
type RecognizedText struct {
	// Text is the full recognized text in reading order.
	Text string `json:"text"`

	// Blocks carries per-element boxes for overlay drawing. May be empty.
	Blocks []TextBlock `json:"blocks,omitempty"`

	// Confidence is the mean confidence across blocks that reported one.
	Confidence float32 `json:"confidence,omitempty"`

	// ImageWidth and ImageHeight are the dimensions the boxes refer to.
	ImageWidth  int `json:"image_width,omitempty"`
	ImageHeight int `json:"image_height,omitempty"`

	Engine             string        `json:"engine"`
	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// IsBlank reports whether nothing but whitespace was recognized.
func (r *RecognizedText) IsBlank() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// MeanConfidence averages the non-zero block confidences.
func MeanConfidence(blocks []TextBlock) float32 {
	var sum float32
	var n int
	for _, b := range blocks {
		if b.Confidence > 0 {
			sum += b.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}
