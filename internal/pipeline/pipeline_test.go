package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"visionassist/internal/actions"
	"visionassist/internal/classifier"
	"visionassist/internal/logger"
	"visionassist/internal/ocr"
	"visionassist/pkg/models"
)

var testPNG = func() []byte {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(2, 2, color.Gray{Y: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}()

// fakeRecognizer returns canned text. When gate is non-nil each call
// announces itself on started and waits for gate to close.
type fakeRecognizer struct {
	text    string
	err     error
	started chan struct{}
	gate    chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, r io.Reader) (*models.RecognizedText, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.RecognizedText{Text: f.text, Engine: "fake"}, nil
}

func (f *fakeRecognizer) Name() string { return "fake" }
func (f *fakeRecognizer) Close() error { return nil }

func newTestScanner(rec ocr.Recognizer) *Scanner {
	return NewScanner(rec, WithLogger(logger.Nop()))
}

func TestScanClassifiesRecognizedText(t *testing.T) {
	s := newTestScanner(&fakeRecognizer{text: "Call 555-123-4567 or visit example.com"})

	frame := NewFrame("test.png", testPNG)
	report, err := s.Scan(context.Background(), frame)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.FrameID != frame.ID || report.Idle {
		t.Fatalf("report = %+v", report)
	}
	if report.Classification.Category != classifier.CategoryDocument {
		t.Errorf("category = %v", report.Classification.Category)
	}
	if len(report.Actions) != 3 || report.Actions[0].Effect.Kind != actions.EffectDial {
		t.Errorf("actions = %+v", report.Actions)
	}
	if report.Recognized.ImageWidth != 8 || report.Recognized.ImageHeight != 8 {
		t.Errorf("image size not filled from preprocessing: %dx%d",
			report.Recognized.ImageWidth, report.Recognized.ImageHeight)
	}
}

func TestScanBlankTextIsIdle(t *testing.T) {
	s := newTestScanner(&fakeRecognizer{text: " \n "})
	report, err := s.Scan(context.Background(), NewFrame("blank.png", testPNG))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !report.Idle || report.Classification != nil || report.Actions != nil {
		t.Errorf("blank frame report = %+v", report)
	}
}

func TestScanErrors(t *testing.T) {
	ctx := context.Background()

	if _, err := newTestScanner(nil).Scan(ctx, NewFrame("x", testPNG)); !errors.Is(err, ocr.ErrInvalidConfiguration) {
		t.Errorf("nil recognizer err = %v", err)
	}

	s := newTestScanner(&fakeRecognizer{text: "x"})
	if _, err := s.Scan(ctx, NewFrame("x", []byte("nope"))); !errors.Is(err, ocr.ErrInvalidImage) {
		t.Errorf("bad image err = %v", err)
	}

	s = newTestScanner(&fakeRecognizer{err: ocr.ErrRecognitionFailed})
	if _, err := s.Scan(ctx, NewFrame("x", testPNG)); !errors.Is(err, ocr.ErrRecognitionFailed) {
		t.Errorf("recognizer err = %v", err)
	}
}

func TestAnalyzeText(t *testing.T) {
	s := newTestScanner(nil)
	if s.CanRecognize() {
		t.Error("scanner without recognizer claims it can recognize")
	}

	report := s.AnalyzeText("Warning: low battery")
	if report.Classification == nil || !report.Classification.IsHazard() {
		t.Fatalf("report = %+v", report)
	}
	if report.Text() != "Warning: low battery" {
		t.Errorf("Text() = %q", report.Text())
	}
	if report.FrameID == "" {
		t.Error("missing frame ID")
	}

	if idle := s.AnalyzeText(""); !idle.Idle {
		t.Errorf("empty text report = %+v", idle)
	}
}

func TestAnalyzerKeepsOnlyLatestFrame(t *testing.T) {
	rec := &fakeRecognizer{
		text:    "Take 5 mg of the pill",
		started: make(chan struct{}, 4),
		gate:    make(chan struct{}),
	}

	reports := make(chan *Report, 4)
	a := NewAnalyzer(newTestScanner(rec), func(r *Report) { reports <- r }, nil)
	a.log = logger.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	f1 := NewFrame("1.png", testPNG)
	f2 := NewFrame("2.png", testPNG)
	f3 := NewFrame("3.png", testPNG)

	if a.Submit(f1) {
		t.Fatal("first submit reported a drop")
	}
	select {
	case <-rec.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first frame never reached the recognizer")
	}

	// f1 is in flight; f2 waits and is then replaced by f3
	if a.Submit(f2) {
		t.Error("submit into empty slot reported a drop")
	}
	if !a.Submit(f3) {
		t.Error("replacing a pending frame did not report a drop")
	}
	close(rec.gate)

	var got []string
	for len(got) < 2 {
		select {
		case r := <-reports:
			got = append(got, r.FrameID)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reports, got %v", got)
		}
	}
	if got[0] != f1.ID || got[1] != f3.ID {
		t.Errorf("processed %v, want [%s %s]", got, f1.ID, f3.ID)
	}

	select {
	case r := <-reports:
		t.Errorf("unexpected extra report for frame %s", r.FrameID)
	case <-time.After(50 * time.Millisecond):
	}

	want := Stats{Submitted: 3, Processed: 2, Dropped: 1}
	if stats := a.Stats(); stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestAnalyzerReportsFailures(t *testing.T) {
	rec := &fakeRecognizer{err: ocr.ErrRecognitionFailed}

	failures := make(chan error, 1)
	a := NewAnalyzer(newTestScanner(rec), func(*Report) {
		t.Error("report delivered for failed frame")
	}, func(_ Frame, err error) { failures <- err })
	a.log = logger.Nop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Submit(NewFrame("bad.png", testPNG))
	select {
	case err := <-failures:
		if !errors.Is(err, ocr.ErrRecognitionFailed) {
			t.Errorf("failure = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no failure reported")
	}

	if stats := a.Stats(); stats.Failed != 1 || stats.Processed != 0 {
		t.Errorf("Stats = %+v", stats)
	}
}
