// Package speech reads analysis results aloud.
//
// A Speaker is the synthesizer; Announcer decides what to say and when,
// throttling repeated announcements so a steady camera feed does not talk
// over itself.
package speech

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"

	"visionassist/internal/logger"
)

// Speaker synthesizes speech. Speak flushes: a new utterance interrupts
// any utterance still playing.
type Speaker interface {
	Speak(text string) error
	Stop() error
	IsSpeaking() bool
}

// ErrNoSynthesizer is returned when the synthesizer command is not installed.
var ErrNoSynthesizer = errors.New("speech synthesizer not found")

// CommandSpeaker speaks by running an external synthesizer such as espeak
// or say, passing the text as the final argument.
type CommandSpeaker struct {
	path string
	args []string
	log  zerolog.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

// NewCommandSpeaker resolves name on PATH. Extra args precede the text.
func NewCommandSpeaker(name string, args ...string) (*CommandSpeaker, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSynthesizer, name, err)
	}
	return &CommandSpeaker{
		path: path,
		args: args,
		log:  logger.WithComponent("speech"),
	}, nil
}

// Speak implements Speaker.
func (s *CommandSpeaker) Speak(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	cmd := exec.Command(s.path, append(append([]string(nil), s.args...), text)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start synthesizer: %w", err)
	}

	done := make(chan struct{})
	s.cmd = cmd
	s.done = done
	go func() {
		if err := cmd.Wait(); err != nil {
			s.log.Debug().Err(err).Msg("Synthesizer exited")
		}
		close(done)
	}()
	return nil
}

// Stop implements Speaker.
func (s *CommandSpeaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

func (s *CommandSpeaker) stopLocked() {
	if s.cmd == nil {
		return
	}
	select {
	case <-s.done:
	default:
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		<-s.done
	}
	s.cmd = nil
	s.done = nil
}

// IsSpeaking implements Speaker.
func (s *CommandSpeaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}
