package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"visionassist/internal/logger"
)

// Handler receives every report produced by an Analyzer. It is always
// called from the Analyzer's Run goroutine, one report at a time.
type Handler func(*Report)

// ErrorHandler receives frames whose recognition failed.
type ErrorHandler func(Frame, error)

// Stats counts what happened to submitted frames.
type Stats struct {
	Submitted int `json:"submitted"`
	Processed int `json:"processed"`
	Dropped   int `json:"dropped"`
	Failed    int `json:"failed"`
}

// Analyzer feeds frames to a Scanner with keep-only-latest backpressure:
// one frame in flight, one pending. Submitting while a frame is pending
// replaces it, so in-flight work never exceeds one frame and stale frames
// are discarded instead of queued.
type Analyzer struct {
	scanner  *Scanner
	onReport Handler
	onError  ErrorHandler
	log      zerolog.Logger

	mu      sync.Mutex
	pending *Frame
	stats   Stats

	wake chan struct{}
}

// NewAnalyzer returns an Analyzer delivering reports to onReport.
// onError may be nil.
func NewAnalyzer(scanner *Scanner, onReport Handler, onError ErrorHandler) *Analyzer {
	return &Analyzer{
		scanner:  scanner,
		onReport: onReport,
		onError:  onError,
		log:      logger.WithComponent("analyzer"),
		wake:     make(chan struct{}, 1),
	}
}

// Submit offers a frame for analysis. It never blocks. The return value
// reports whether an older pending frame was dropped to make room.
func (a *Analyzer) Submit(frame Frame) bool {
	a.mu.Lock()
	dropped := a.pending != nil
	if dropped {
		a.stats.Dropped++
		a.log.Debug().
			Str("dropped_frame", a.pending.ID).
			Str("frame_id", frame.ID).
			Msg("Replacing pending frame")
	}
	a.pending = &frame
	a.stats.Submitted++
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return dropped
}

// Stats returns a snapshot of the frame counters.
func (a *Analyzer) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Analyzer) take() *Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.pending
	a.pending = nil
	return f
}

// Run processes frames until ctx is done. It must be called from a single
// goroutine; it is the only consumer of submitted frames.
func (a *Analyzer) Run(ctx context.Context) error {
	a.log.Info().Msg("Analyzer started")
	defer a.log.Info().Msg("Analyzer stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.wake:
		}

		for frame := a.take(); frame != nil; frame = a.take() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.process(ctx, *frame)
		}
	}
}

func (a *Analyzer) process(ctx context.Context, frame Frame) {
	report, err := a.scanner.Scan(ctx, frame)
	if err != nil {
		a.mu.Lock()
		a.stats.Failed++
		a.mu.Unlock()

		frameLog := logger.WithFrame(a.log, frame.ID)
		frameLog.Error().
			Err(err).
			Str("source", frame.Source).
			Msg("Frame recognition failed")
		if a.onError != nil {
			a.onError(frame, err)
		}
		return
	}

	a.mu.Lock()
	a.stats.Processed++
	a.mu.Unlock()

	if a.onReport != nil {
		a.onReport(report)
	}
}
