package hud

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"visionassist/internal/classifier"
	"visionassist/internal/pipeline"
)

func reportFor(text string, latency time.Duration) *pipeline.Report {
	result := classifier.Classify(text)
	return &pipeline.Report{Classification: &result, Latency: latency}
}

func TestRenderIdle(t *testing.T) {
	idleLine := regexp.MustCompile(`^SEARCHING // [0-9A-F]{8}\.\.\.$`)

	for _, r := range []*pipeline.Report{nil, {Idle: true}} {
		s := Render(r)
		if !idleLine.MatchString(s.Line) {
			t.Errorf("idle line = %q", s.Line)
		}
		if s.Hex() != "#ffffff" || s.Alpha >= 1 {
			t.Errorf("idle color = %s alpha %v", s.Hex(), s.Alpha)
		}
		if s.Detail != "" {
			t.Errorf("idle detail = %q", s.Detail)
		}
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		line  string
		color string
	}{
		{"hazard", "Warning: low battery", "⚠️ CRITICAL THREAT DETECTED | 42ms", "#ff0000"},
		{"financial", "Total amount due including tax", "💲 TRANSACTION DETECTED | 42ms", "#00ff00"},
		{"medical", "Take 5 mg of the pill", "💊 MEDICAL | 42ms", "#00e5ff"},
		{"document", "hello there", "📄 DOCUMENT | 42ms", "#00e5ff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Render(reportFor(tt.text, 42*time.Millisecond))
			if s.Line != tt.line {
				t.Errorf("Line = %q, want %q", s.Line, tt.line)
			}
			if s.Hex() != tt.color {
				t.Errorf("color = %s, want %s", s.Hex(), tt.color)
			}
			if s.Alpha != 1 {
				t.Errorf("alpha = %v", s.Alpha)
			}
			if !strings.HasSuffix(s.Detail, "\n\n"+tt.text) {
				t.Errorf("Detail = %q", s.Detail)
			}
		})
	}
}

func TestViewAndANSI(t *testing.T) {
	s := Render(reportFor("Warning: low battery", time.Millisecond))
	v := s.View()
	if v.Color != "#ff0000" || v.Line != s.Line || v.Detail != "SAFETY ALERT\n\nWarning: low battery" {
		t.Errorf("View = %+v", v)
	}
	if got := s.ANSI(); !strings.HasPrefix(got, "\x1b[38;2;255;0;0m") || !strings.HasSuffix(got, "\x1b[0m") {
		t.Errorf("ANSI = %q", got)
	}
}
