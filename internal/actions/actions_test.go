package actions

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"visionassist/internal/logger"
)

func TestGenerateCallAndLink(t *testing.T) {
	text := "Call 555-123-4567 or visit example.com"

	got := Generate(text)
	want := []Suggestion{
		{Label: "Call 555-123-4567", Effect: Effect{Kind: EffectDial, Payload: "555-123-4567"}},
		{Label: "Open Link", Effect: Effect{Kind: EffectOpenURL, Payload: "https://example.com"}},
		{Label: "Copy Text", Effect: Effect{Kind: EffectCopy, Payload: text}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate(%q)\n got  %+v\n want %+v", text, got, want)
	}
}

func TestGenerateCopyOnly(t *testing.T) {
	for _, text := range []string{"", "   ", "Take 5 mg of the pill", "Warning: low battery"} {
		got := Generate(text)
		if len(got) != 1 {
			t.Fatalf("Generate(%q) = %d suggestions, want 1: %+v", text, len(got), got)
		}
		if got[0].Effect.Kind != EffectCopy || got[0].Effect.Payload != text {
			t.Errorf("Generate(%q)[0] = %+v, want COPY of input", text, got[0])
		}
	}
}

func TestGenerateKeepsSchemes(t *testing.T) {
	got := Generate("docs at http://example.org/a and https://example.net")
	var urls []string
	for _, s := range got {
		if s.Effect.Kind == EffectOpenURL {
			urls = append(urls, s.Effect.Payload)
		}
	}
	want := []string{"http://example.org/a", "https://example.net"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("urls = %v, want %v", urls, want)
	}
}

func TestGenerateKeepsColonOnlySchemes(t *testing.T) {
	got := Generate("tel:5551234567")
	want := []Suggestion{
		{Label: "Call 5551234567", Effect: Effect{Kind: EffectDial, Payload: "5551234567"}},
		{Label: "Open Link", Effect: Effect{Kind: EffectOpenURL, Payload: "tel:5551234567"}},
		{Label: "Copy Text", Effect: Effect{Kind: EffectCopy, Payload: "tel:5551234567"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Generate(tel:...)\n got  %+v\n want %+v", got, want)
	}
}

func TestGenerateSkipsEmailAddresses(t *testing.T) {
	got := Generate("write to bob@example.com")
	if len(got) != 1 || got[0].Effect.Kind != EffectCopy {
		t.Errorf("Generate(email) = %+v, want COPY only", got)
	}

	got = Generate("mailto:bob@example.com")
	if len(got) != 2 || got[0].Effect != (Effect{Kind: EffectOpenURL, Payload: "mailto:bob@example.com"}) {
		t.Errorf("Generate(mailto) = %+v, want OPEN_URL then COPY", got)
	}
}

type fakeMatcher struct {
	phones []Match
	urls   []Match
}

func (f fakeMatcher) FindPhoneNumbers(string) []Match { return f.phones }
func (f fakeMatcher) FindURLs(string) []Match         { return f.urls }

func TestGeneratorOrderingWithInjectedMatcher(t *testing.T) {
	// matches are reported out of text order on purpose: the generator
	// groups by kind and keeps each matcher's order
	g := NewGenerator(fakeMatcher{
		phones: []Match{{Text: "111"}, {Text: "222"}, {Text: "111"}},
		urls:   []Match{{Text: "b.example"}, {Text: "ftp://a.example"}},
	})

	got := g.Generate("ignored by fake")
	kinds := make([]EffectKind, len(got))
	payloads := make([]string, len(got))
	for i, s := range got {
		kinds[i] = s.Effect.Kind
		payloads[i] = s.Effect.Payload
	}

	wantKinds := []EffectKind{EffectDial, EffectDial, EffectDial, EffectOpenURL, EffectOpenURL, EffectCopy}
	wantPayloads := []string{"111", "222", "111", "https://b.example", "ftp://a.example", "ignored by fake"}
	if !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("kinds = %v, want %v", kinds, wantKinds)
	}
	if !reflect.DeepEqual(payloads, wantPayloads) {
		t.Errorf("payloads = %v, want %v", payloads, wantPayloads)
	}
	if got[3].Label != "Open Link" || got[4].Label != "Open Link" {
		t.Errorf("link labels should be static, got %q and %q", got[3].Label, got[4].Label)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	text := "+1 (800) 555-0199, 020 7946 0958, see golang.org and https://pkg.go.dev"
	first := Generate(text)
	if !reflect.DeepEqual(first, Generate(text)) {
		t.Fatal("Generate returned different output for identical input")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"example.com":          "https://example.com",
		"www.example.com/menu": "https://www.example.com/menu",
		"http://example.com":   "http://example.com",
		"Https://x.io":         "Https://x.io",
		"mailto:a@example.com": "mailto:a@example.com",
		"example.com:8080":     "https://example.com:8080",
		"tel:5551234567":       "tel:5551234567",
		"sms:5550100":          "sms:5550100",
		"magnet:?xt=urn:btih":  "magnet:?xt=urn:btih",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEffectURI(t *testing.T) {
	if got := (Effect{Kind: EffectDial, Payload: "555-0100"}).URI(); got != "tel:555-0100" {
		t.Errorf("dial URI = %q", got)
	}
	if got := (Effect{Kind: EffectOpenURL, Payload: "https://a.b"}).URI(); got != "https://a.b" {
		t.Errorf("url URI = %q", got)
	}
	if got := (Effect{Kind: EffectCopy, Payload: "x"}).URI(); got != "" {
		t.Errorf("copy URI = %q", got)
	}
}

func TestSystemDispatcher(t *testing.T) {
	var opened, copied []string
	d := &SystemDispatcher{
		openURI:   func(uri string) error { opened = append(opened, uri); return nil },
		writeClip: func(text string) error { copied = append(copied, text); return nil },
		log:       logger.Nop(),
	}

	ctx := context.Background()
	for _, s := range Generate("Call 555-123-4567 or visit example.com") {
		if err := d.Dispatch(ctx, s); err != nil {
			t.Fatalf("Dispatch(%+v): %v", s, err)
		}
	}

	if want := []string{"tel:555-123-4567", "https://example.com"}; !reflect.DeepEqual(opened, want) {
		t.Errorf("opened = %v, want %v", opened, want)
	}
	if want := []string{"Call 555-123-4567 or visit example.com"}; !reflect.DeepEqual(copied, want) {
		t.Errorf("copied = %v, want %v", copied, want)
	}

	err := d.Dispatch(ctx, Suggestion{Effect: Effect{Kind: EffectKind(9)}})
	if !errors.Is(err, ErrUnsupportedEffect) {
		t.Errorf("unknown kind error = %v, want ErrUnsupportedEffect", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := d.Dispatch(canceled, Suggestion{Effect: Effect{Kind: EffectCopy}}); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled dispatch error = %v", err)
	}
}

func TestDispatcherWrapsHandlerErrors(t *testing.T) {
	boom := errors.New("no handler")
	d := &SystemDispatcher{
		openURI:   func(string) error { return boom },
		writeClip: func(string) error { return boom },
		log:       logger.Nop(),
	}
	if err := d.Dispatch(context.Background(), Generate("example.com")[0]); !errors.Is(err, boom) {
		t.Errorf("open error = %v, want wrapped %v", err, boom)
	}
}
