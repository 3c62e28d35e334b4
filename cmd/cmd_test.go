package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"visionassist/internal/actions"
	"visionassist/internal/logger"
	"visionassist/internal/ocr"
)

func runRoot(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestRootCommandPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Usage:", "visionassist [command]", "classify", "scan", "watch", "serve"} {
		if !strings.Contains(got, want) {
			t.Errorf("root output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Welcome") {
		t.Errorf("root printed a banner instead of usage:\n%s", got)
	}
}

func TestClassifyCommand(t *testing.T) {
	got := runRoot(t, "", "classify", "--json=false", "--verbose=false", "Take", "2", "pill", "call", "555-123-4567")

	if !strings.HasPrefix(got, "💊 MEDICAL | ") {
		t.Errorf("status line missing:\n%s", got)
	}
	for _, want := range []string{"Medical Info", "[1] Call 555-123-4567", "tel:555-123-4567", "[2] Copy Text"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestClassifyCommandStdinJSON(t *testing.T) {
	got := runRoot(t, "Total tax due", "classify", "--json", "--verbose")

	var output struct {
		Classification struct {
			Category string `json:"category"`
		} `json:"classification"`
		Scores map[string]int `json:"scores"`
	}
	if err := json.Unmarshal([]byte(got), &output); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if output.Classification.Category != "FINANCIAL" {
		t.Errorf("category = %q", output.Classification.Category)
	}
	if output.Scores["FINANCIAL"] != 2 {
		t.Errorf("scores = %v", output.Scores)
	}
}

func TestHandleScanError(t *testing.T) {
	log := logger.Nop()

	tests := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, "timed out"},
		{context.Canceled, "canceled"},
		{ocr.WrapRecognitionError("Preprocess", "", ocr.ErrImageTooLarge, ""), "too large"},
		{ocr.WrapRecognitionError("Preprocess", "", ocr.ErrInvalidImage, ""), "corrupted image"},
		{errors.New("rpc error: code = Unauthenticated"), "authentication failed"},
		{errors.New("QUOTA_EXCEEDED"), "quota exceeded"},
		{errors.New("Failed loading language 'deu': tessdata not found"), "language data"},
		{ocr.ErrRecognitionFailed, "network issues"},
	}
	for _, tt := range tests {
		if got := handleScanError(tt.err, log); !strings.Contains(got.Error(), tt.want) {
			t.Errorf("handleScanError(%v) = %q, want mention of %q", tt.err, got, tt.want)
		}
	}
}

func TestHandleActionError(t *testing.T) {
	log := logger.Nop()
	copyText := actions.Suggestion{Label: "Copy Text", Effect: actions.Effect{Kind: actions.EffectCopy, Payload: "x"}}

	if got := handleActionError(errors.New("no xclip"), copyText, log); !strings.Contains(got.Error(), "clipboard") {
		t.Errorf("copy error = %q", got)
	}
	if got := handleActionError(actions.ErrUnsupportedEffect, copyText, log); !strings.Contains(got.Error(), "cannot be performed") {
		t.Errorf("unsupported error = %q", got)
	}
}

func TestReadFrame(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readFrame(empty, 100); err == nil {
		t.Error("empty file accepted")
	}

	big := filepath.Join(dir, "big.jpg")
	if err := os.WriteFile(big, make([]byte, 101), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readFrame(big, 100); err == nil {
		t.Error("oversized file accepted")
	}

	ok := filepath.Join(dir, "frame.jpg")
	if err := os.WriteFile(ok, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	frame, err := readFrame(ok, 100)
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if frame.Source != "frame.jpg" || string(frame.Data) != "data" || frame.ID == "" {
		t.Errorf("frame = %+v", frame)
	}
}

func TestIsImageFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.JPG": true, "b.png": true, "c.tiff": true, "d.txt": false, "e": false, "frame.jpg.tmp": false,
	} {
		if got := isImageFile(name); got != want {
			t.Errorf("isImageFile(%q) = %v", name, got)
		}
	}
}
