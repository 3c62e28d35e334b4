package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"visionassist/internal/logger"
	"visionassist/internal/ocr"
)

type Config struct {
	// OCR Engine Configuration
	OCREngine         string
	TesseractLanguage string

	// Google Cloud Configuration
	GoogleCloudProject    string
	GoogleCloudLocation   string
	DocumentAIProcessorID string

	// Frame Preprocessing Configuration
	PreprocessMaxWidth  int
	PreprocessGrayscale bool
	PreprocessContrast  float64
	MaxImageBytes       int64

	// Speech Configuration
	SpeechCommand string
	AutoRead      bool

	// HTTP Server Configuration
	HTTPAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCREngine:             strings.ToLower(getEnv("OCR_ENGINE", ocr.EngineTesseract)),
		TesseractLanguage:     getEnv("TESSERACT_LANGUAGE", "eng"),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		SpeechCommand:         getEnv("SPEECH_COMMAND", "espeak"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.PreprocessMaxWidth, err = getEnvInt("PREPROCESS_MAX_WIDTH", 1280); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.PreprocessGrayscale, err = getEnvBool("PREPROCESS_GRAYSCALE", true); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.PreprocessContrast, err = getEnvFloat("PREPROCESS_CONTRAST", 0); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if config.AutoRead, err = getEnvBool("AUTO_READ", false); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	maxBytes, err := getEnvInt("MAX_IMAGE_BYTES", ocr.DefaultMaxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.MaxImageBytes = int64(maxBytes)

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case ocr.EngineTesseract, ocr.EngineVision:
	case ocr.EngineDocumentAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai engine")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai engine")
		}
	default:
		return fmt.Errorf("OCR_ENGINE must be one of %s, %s, %s (got %q)",
			ocr.EngineTesseract, ocr.EngineVision, ocr.EngineDocumentAI, c.OCREngine)
	}
	if c.PreprocessMaxWidth < 0 {
		return fmt.Errorf("PREPROCESS_MAX_WIDTH must not be negative")
	}
	if c.PreprocessContrast <= -1 || c.PreprocessContrast > 1 {
		return fmt.Errorf("PREPROCESS_CONTRAST must be in (-1, 1]")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// OCRConfig returns the engine selection for ocr.NewRecognizer
func (c *Config) OCRConfig() ocr.Config {
	return ocr.Config{
		Engine:            c.OCREngine,
		TesseractLanguage: c.TesseractLanguage,
		ProjectID:         c.GoogleCloudProject,
		Location:          c.GoogleCloudLocation,
		ProcessorID:       c.DocumentAIProcessorID,
	}
}

// PreprocessOptions returns frame normalization settings
func (c *Config) PreprocessOptions() ocr.PreprocessOptions {
	return ocr.PreprocessOptions{
		MaxWidth:  c.PreprocessMaxWidth,
		Grayscale: c.PreprocessGrayscale,
		Contrast:  c.PreprocessContrast,
		MaxBytes:  c.MaxImageBytes,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}
