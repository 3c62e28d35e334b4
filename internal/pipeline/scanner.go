// Package pipeline connects OCR output to the classifier and action
// generator.
//
// Scanner handles one frame at a time. Analyzer puts a Scanner behind a
// keep-only-latest slot: while one frame is being recognized, at most one
// newer frame waits, and any frame it replaces is dropped.
package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"visionassist/internal/actions"
	"visionassist/internal/classifier"
	"visionassist/internal/logger"
	"visionassist/internal/ocr"
	"visionassist/pkg/models"
)

// Report is everything derived from one frame or text block.
type Report struct {
	FrameID string `json:"frame_id"`

	// Idle is set when nothing was recognized; Classification and Actions
	// are then empty.
	Idle bool `json:"idle"`

	Recognized     *models.RecognizedText `json:"recognized,omitempty"`
	Classification *classifier.Result     `json:"classification,omitempty"`
	Actions        []actions.Suggestion   `json:"actions,omitempty"`

	Latency     time.Duration `json:"latency"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// Text returns the raw recognized text, if any.
func (r *Report) Text() string {
	if r.Classification != nil {
		return r.Classification.CleanText
	}
	if r.Recognized != nil {
		return r.Recognized.Text
	}
	return ""
}

// Frame is an encoded camera image awaiting recognition.
type Frame struct {
	ID         string
	Source     string // file name or other origin, for logs
	Data       []byte
	CapturedAt time.Time
}

// NewFrame wraps encoded image bytes with a fresh ID.
func NewFrame(source string, data []byte) Frame {
	return Frame{
		ID:         uuid.NewString(),
		Source:     source,
		Data:       data,
		CapturedAt: time.Now(),
	}
}

// Scanner runs recognition and analysis for single frames.
type Scanner struct {
	recognizer ocr.Recognizer
	classifier *classifier.Classifier
	generator  *actions.Generator
	preprocess ocr.PreprocessOptions
	log        zerolog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithClassifier replaces the default keyword classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Scanner) { s.classifier = c }
}

// WithGenerator replaces the default action generator.
func WithGenerator(g *actions.Generator) Option {
	return func(s *Scanner) { s.generator = g }
}

// WithPreprocessOptions sets frame normalization.
func WithPreprocessOptions(opts ocr.PreprocessOptions) Option {
	return func(s *Scanner) { s.preprocess = opts }
}

// WithLogger sets the scanner's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// NewScanner builds a Scanner. recognizer may be nil when only
// AnalyzeText is needed.
func NewScanner(recognizer ocr.Recognizer, opts ...Option) *Scanner {
	s := &Scanner{
		recognizer: recognizer,
		classifier: classifier.New(),
		generator:  actions.NewGenerator(nil),
		preprocess: ocr.DefaultPreprocessOptions(),
		log:        logger.WithComponent("scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanRecognize reports whether the scanner has an OCR engine.
func (s *Scanner) CanRecognize() bool {
	return s.recognizer != nil
}

// Scan preprocesses and recognizes a frame, then analyzes the text.
func (s *Scanner) Scan(ctx context.Context, frame Frame) (*Report, error) {
	const op = "Scan"
	start := time.Now()
	log := logger.WithFrame(s.log, frame.ID)

	if s.recognizer == nil {
		return nil, ocr.WrapRecognitionError(op, "", ocr.ErrInvalidConfiguration, "no recognizer configured")
	}

	prepared, err := ocr.Preprocess(bytes.NewReader(frame.Data), s.preprocess)
	if err != nil {
		return nil, err
	}

	recognized, err := s.recognizer.Recognize(ctx, prepared.Reader())
	if err != nil {
		return nil, err
	}
	if recognized.ImageWidth == 0 && recognized.ImageHeight == 0 {
		recognized.ImageWidth = prepared.Width
		recognized.ImageHeight = prepared.Height
	}

	log.Debug().
		Str("engine", recognized.Engine).
		Int("blocks", len(recognized.Blocks)).
		Float32("confidence", recognized.Confidence).
		Dur("ocr_duration", recognized.ProcessingDuration).
		Msg("Frame recognized")

	report := s.analyze(frame.ID, recognized)
	report.Latency = time.Since(start)
	return report, nil
}

// AnalyzeText classifies text and derives actions without OCR.
func (s *Scanner) AnalyzeText(text string) *Report {
	start := time.Now()
	report := s.analyze(uuid.NewString(), &models.RecognizedText{
		Text:        text,
		ProcessedAt: start,
	})
	report.Latency = time.Since(start)
	return report
}

func (s *Scanner) analyze(frameID string, recognized *models.RecognizedText) *Report {
	report := &Report{
		FrameID:     frameID,
		Recognized:  recognized,
		ProcessedAt: time.Now(),
	}

	// blank frames never reach the classifier
	if recognized.IsBlank() {
		report.Idle = true
		return report
	}

	result := s.classifier.Classify(recognized.Text)
	report.Classification = &result
	report.Actions = s.generator.Generate(recognized.Text)

	s.log.Debug().
		Str("frame_id", frameID).
		Str("category", result.Category.String()).
		Int("risk_level", result.RiskLevel).
		Int("actions", len(report.Actions)).
		Msg("Text analyzed")

	return report
}
