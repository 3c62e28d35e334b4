package config

import (
	"strings"
	"testing"

	"visionassist/internal/ocr"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OCR_ENGINE", "TESSERACT_LANGUAGE", "GOOGLE_CLOUD_LOCATION",
		"PREPROCESS_MAX_WIDTH", "PREPROCESS_GRAYSCALE", "PREPROCESS_CONTRAST", "MAX_IMAGE_BYTES",
		"SPEECH_COMMAND", "AUTO_READ", "HTTP_ADDR", "LOG_LEVEL", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OCREngine != ocr.EngineTesseract || cfg.TesseractLanguage != "eng" {
		t.Errorf("engine = %s/%s", cfg.OCREngine, cfg.TesseractLanguage)
	}
	if cfg.HTTPAddr != ":8080" || cfg.SpeechCommand != "espeak" || cfg.AutoRead {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.PreprocessOptions(); got != ocr.DefaultPreprocessOptions() {
		t.Errorf("PreprocessOptions = %+v", got)
	}
	if lc := cfg.GetLoggerConfig(); lc.Level != "info" || lc.Output != "stderr" {
		t.Errorf("logger config = %+v", lc)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OCR_ENGINE", "DocumentAI")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "eu")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "abc123")
	t.Setenv("PREPROCESS_MAX_WIDTH", "0")
	t.Setenv("PREPROCESS_GRAYSCALE", "false")
	t.Setenv("PREPROCESS_CONTRAST", "0.3")
	t.Setenv("AUTO_READ", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := ocr.Config{
		Engine:            ocr.EngineDocumentAI,
		TesseractLanguage: cfg.TesseractLanguage,
		ProjectID:         "proj",
		Location:          "eu",
		ProcessorID:       "abc123",
	}
	if got := cfg.OCRConfig(); got != want {
		t.Errorf("OCRConfig = %+v, want %+v", got, want)
	}
	if opts := cfg.PreprocessOptions(); opts.MaxWidth != 0 || opts.Grayscale || opts.Contrast != 0.3 {
		t.Errorf("PreprocessOptions = %+v", opts)
	}
	if !cfg.AutoRead {
		t.Error("AUTO_READ not applied")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown engine", map[string]string{"OCR_ENGINE": "abbyy"}, "OCR_ENGINE"},
		{"documentai without project", map[string]string{
			"OCR_ENGINE": "documentai", "GOOGLE_CLOUD_PROJECT": "", "DOCUMENT_AI_PROCESSOR_ID": "x",
		}, "GOOGLE_CLOUD_PROJECT"},
		{"documentai without processor", map[string]string{
			"OCR_ENGINE": "documentai", "GOOGLE_CLOUD_PROJECT": "p", "DOCUMENT_AI_PROCESSOR_ID": "",
		}, "DOCUMENT_AI_PROCESSOR_ID"},
		{"bad width", map[string]string{"PREPROCESS_MAX_WIDTH": "wide"}, "PREPROCESS_MAX_WIDTH"},
		{"negative width", map[string]string{"PREPROCESS_MAX_WIDTH": "-1"}, "PREPROCESS_MAX_WIDTH"},
		{"contrast out of range", map[string]string{"PREPROCESS_CONTRAST": "1.5"}, "PREPROCESS_CONTRAST"},
		{"bad bool", map[string]string{"AUTO_READ": "sometimes"}, "AUTO_READ"},
		{"zero max bytes", map[string]string{"MAX_IMAGE_BYTES": "0"}, "MAX_IMAGE_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OCR_ENGINE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}
