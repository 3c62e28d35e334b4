package speech

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"visionassist/internal/logger"
	"visionassist/internal/pipeline"
)

const (
	hazardCooldown  = 2 * time.Second
	generalCooldown = 3 * time.Second
	minSpokenLength = 5
)

// Announcer applies the read-aloud policy to a stream of reports.
type Announcer struct {
	speaker Speaker
	now     func() time.Time
	log     zerolog.Logger

	mu         sync.Mutex
	autoRead   bool
	manual     bool
	lastSpoken time.Time
}

// NewAnnouncer returns an Announcer with auto-read off.
func NewAnnouncer(speaker Speaker) *Announcer {
	return &Announcer{
		speaker: speaker,
		now:     time.Now,
		log:     logger.WithComponent("announcer"),
	}
}

// SetAutoRead toggles continuous reading. Turning it on resets the
// cooldown and confirms with "Systems Online."; turning it off silences
// the speaker.
func (a *Announcer) SetAutoRead(on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.autoRead = on
	if !on {
		return a.speaker.Stop()
	}
	a.lastSpoken = time.Time{}
	return a.speaker.Speak("Systems Online.")
}

// Trigger requests that the next analyzed report be read regardless of
// cooldowns.
func (a *Announcer) Trigger() {
	a.mu.Lock()
	a.manual = true
	a.mu.Unlock()
}

// Announce speaks the report if the policy allows it and returns what was
// said, or "" when nothing was.
//
// Hazards are announced as "Warning! <summary>" at most every two seconds
// and suppress the normal reading. Other reports are read as
// "<summary>. <text>" when manually triggered, or when three seconds have
// passed and the speaker is quiet. Idle reports are never spoken.
func (a *Announcer) Announce(r *pipeline.Report) (string, error) {
	if r == nil || r.Idle || r.Classification == nil {
		return "", nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.autoRead && !a.manual {
		return "", nil
	}

	c := r.Classification
	now := a.now()
	since := now.Sub(a.lastSpoken)

	if c.IsHazard() && since > hazardCooldown {
		text := "Warning! " + c.Summary
		return a.say(text, now)
	}

	if a.manual || (since > generalCooldown && !a.speaker.IsSpeaking()) {
		text := c.Summary + ". " + c.CleanText
		if len(text) > minSpokenLength || a.manual {
			spoken, err := a.say(text, now)
			if err != nil {
				return "", err
			}
			a.manual = false
			return spoken, nil
		}
	}
	return "", nil
}

func (a *Announcer) say(text string, at time.Time) (string, error) {
	if err := a.speaker.Speak(text); err != nil {
		a.log.Warn().Err(err).Msg("Speech failed")
		return "", err
	}
	a.lastSpoken = at
	return text, nil
}
