package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
	"github.com/rs/zerolog"

	"visionassist/internal/logger"
)

// ErrUnsupportedEffect is returned when a Dispatcher cannot carry out an effect.
var ErrUnsupportedEffect = errors.New("unsupported suggestion effect")

// Dispatcher carries out a suggestion selected by the user.
type Dispatcher interface {
	Dispatch(ctx context.Context, s Suggestion) error
}

// SystemDispatcher hands URIs to the desktop's registered handlers and
// writes COPY payloads to the system clipboard.
type SystemDispatcher struct {
	openURI   func(uri string) error
	writeClip func(text string) error
	log       zerolog.Logger
}

// NewSystemDispatcher returns a Dispatcher bound to the host desktop.
func NewSystemDispatcher() *SystemDispatcher {
	return &SystemDispatcher{
		openURI:   browser.OpenURL,
		writeClip: clipboard.WriteAll,
		log:       logger.WithComponent("dispatch"),
	}
}

// Dispatch implements Dispatcher.
func (d *SystemDispatcher) Dispatch(ctx context.Context, s Suggestion) error {
	const op = "Dispatch"

	if err := ctx.Err(); err != nil {
		return err
	}

	d.log.Debug().
		Str("kind", s.Effect.Kind.String()).
		Str("label", s.Label).
		Msg("Dispatching suggestion")

	switch s.Effect.Kind {
	case EffectDial, EffectOpenURL:
		uri := s.Effect.URI()
		if err := d.openURI(uri); err != nil {
			return fmt.Errorf("%s: failed to open %s: %w", op, uri, err)
		}
	case EffectCopy:
		if err := d.writeClip(s.Effect.Payload); err != nil {
			return fmt.Errorf("%s: failed to write clipboard: %w", op, err)
		}
		d.log.Info().Int("bytes", len(s.Effect.Payload)).Msg("Copied!")
	default:
		return fmt.Errorf("%s: %w: %s", op, ErrUnsupportedEffect, s.Effect.Kind)
	}
	return nil
}
