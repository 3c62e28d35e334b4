// Package hud renders pipeline reports into the one-line status and detail
// text shown over the camera preview.
package hud

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	colorful "github.com/lucasb-eyer/go-colorful"

	"visionassist/internal/classifier"
	"visionassist/internal/pipeline"
)

// Status colors.
var (
	ColorIdle      = mustHex("#FFFFFF")
	ColorThreat    = mustHex("#FF0000")
	ColorFinancial = mustHex("#00FF00")
	ColorDefault   = mustHex("#00E5FF")
)

// idleAlpha is the translucency of the searching indicator (0x88 of 0xFF).
const idleAlpha = float64(0x88) / 0xFF

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Status is the rendered HUD state for one report.
type Status struct {
	Line   string
	Detail string
	Color  colorful.Color
	Alpha  float64 // 1 is opaque
}

// Hex returns the status color as #rrggbb.
func (s Status) Hex() string {
	return s.Color.Hex()
}

// View is the serializable form of a Status.
type View struct {
	Line   string  `json:"line"`
	Detail string  `json:"detail,omitempty"`
	Color  string  `json:"color"`
	Alpha  float64 `json:"alpha"`
}

// View flattens the status for serialization.
func (s Status) View() View {
	return View{Line: s.Line, Detail: s.Detail, Color: s.Hex(), Alpha: s.Alpha}
}

// Render builds the status for a report.
func Render(r *pipeline.Report) Status {
	if r == nil || r.Idle || r.Classification == nil {
		return Status{
			Line:  "SEARCHING // " + scanToken() + "...",
			Color: ColorIdle,
			Alpha: idleAlpha,
		}
	}

	c := r.Classification
	var line strings.Builder
	status := Status{Alpha: 1}

	switch {
	case c.IsHazard():
		line.WriteString("⚠️ CRITICAL THREAT DETECTED | ")
		status.Color = ColorThreat
	case c.Category == classifier.CategoryFinancial:
		line.WriteString("💲 TRANSACTION DETECTED | ")
		status.Color = ColorFinancial
	default:
		line.WriteString(c.Category.Label() + " | ")
		status.Color = ColorDefault
	}
	fmt.Fprintf(&line, "%dms", r.Latency.Milliseconds())

	status.Line = line.String()
	status.Detail = c.Summary + "\n\n" + c.CleanText
	return status
}

// scanToken is eight random upper-case hex digits for the idle line.
func scanToken() string {
	id := uuid.New()
	return strings.ToUpper(fmt.Sprintf("%x", id[:4]))
}

// ANSI wraps the line in a 24-bit terminal color escape.
func (s Status) ANSI() string {
	r, g, b := s.Color.RGB255()
	if s.Alpha < 1 {
		// blend toward black to approximate translucency on a dark terminal
		blended := colorful.Color{}.BlendRgb(s.Color, s.Alpha)
		r, g, b = blended.RGB255()
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", r, g, b, s.Line)
}
