// Package actions derives user-actionable suggestions from recognized text.
//
// A Generator scans text for phone numbers and links and returns plain data:
// one DIAL suggestion per phone number, one OPEN_URL suggestion per link,
// and a trailing COPY suggestion carrying the whole text. Carrying out a
// suggestion is the job of a Dispatcher, kept separate so that generation
// stays pure and testable without a desktop session.
package actions

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/xurls/v2"
)

// EffectKind identifies what selecting a suggestion does.
type EffectKind int

const (
	EffectDial EffectKind = iota
	EffectOpenURL
	EffectCopy
)

func (k EffectKind) String() string {
	switch k {
	case EffectDial:
		return "DIAL"
	case EffectOpenURL:
		return "OPEN_URL"
	case EffectCopy:
		return "COPY"
	default:
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EffectKind) MarshalText() ([]byte, error) {
	switch k {
	case EffectDial, EffectOpenURL, EffectCopy:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("actions: unknown effect kind %d", int(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EffectKind) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "DIAL":
		*k = EffectDial
	case "OPEN_URL":
		*k = EffectOpenURL
	case "COPY":
		*k = EffectCopy
	default:
		return fmt.Errorf("actions: unknown effect kind %q", string(text))
	}
	return nil
}

// Effect is the tagged payload of a suggestion: a phone number for DIAL,
// an absolute URL for OPEN_URL, the full text for COPY.
type Effect struct {
	Kind    EffectKind `json:"kind"`
	Payload string     `json:"payload"`
}

// URI returns the URI a platform handler would open for the effect,
// or "" when the effect is not URI-shaped.
func (e Effect) URI() string {
	switch e.Kind {
	case EffectDial:
		return "tel:" + e.Payload
	case EffectOpenURL:
		return e.Payload
	default:
		return ""
	}
}

// Suggestion is one selectable action.
type Suggestion struct {
	Label  string `json:"label"`
	Effect Effect `json:"effect"`
}

const (
	openLinkLabel = "Open Link"
	copyTextLabel = "Copy Text"
)

// schemePrefix accepts the same schemes the URL matcher does: any
// "<scheme>://" plus the known colon-only schemes (tel:, sms:, mailto:, ...).
var schemePrefix = regexp.MustCompile(`(?i)^` + xurls.AnyScheme)

func hasScheme(s string) bool { return schemePrefix.MatchString(s) }

// NormalizeURL prefixes https:// onto links found without a scheme.
func NormalizeURL(raw string) string {
	if hasScheme(raw) {
		return raw
	}
	return "https://" + raw
}

// Generator turns text into suggestions.
type Generator struct {
	matcher Matcher
}

// NewGenerator returns a Generator backed by m. A nil m selects the
// default PatternMatcher.
func NewGenerator(m Matcher) *Generator {
	if m == nil {
		m = NewPatternMatcher()
	}
	return &Generator{matcher: m}
}

// Generate returns DIAL suggestions, then OPEN_URL suggestions, each in the
// order found, followed by exactly one COPY suggestion for the full text.
// Duplicates are kept.
func (g *Generator) Generate(text string) []Suggestion {
	phones := g.matcher.FindPhoneNumbers(text)
	urls := g.matcher.FindURLs(text)

	suggestions := make([]Suggestion, 0, len(phones)+len(urls)+1)
	for _, m := range phones {
		suggestions = append(suggestions, Suggestion{
			Label:  "Call " + m.Text,
			Effect: Effect{Kind: EffectDial, Payload: m.Text},
		})
	}
	for _, m := range urls {
		suggestions = append(suggestions, Suggestion{
			Label:  openLinkLabel,
			Effect: Effect{Kind: EffectOpenURL, Payload: NormalizeURL(m.Text)},
		})
	}
	suggestions = append(suggestions, Suggestion{
		Label:  copyTextLabel,
		Effect: Effect{Kind: EffectCopy, Payload: text},
	})
	return suggestions
}

var defaultGenerator = NewGenerator(nil)

// Generate derives suggestions with the default matcher.
func Generate(text string) []Suggestion {
	return defaultGenerator.Generate(text)
}
