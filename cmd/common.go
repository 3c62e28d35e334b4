package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"visionassist/internal/config"
	"visionassist/internal/ocr"
	"visionassist/internal/speech"
)

// loadConfig reads configuration from the environment (.env is loaded by main).
func loadConfig(log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		return nil, err
	}
	return cfg, nil
}

// createContext returns a context canceled on SIGINT/SIGTERM and, when
// timeoutSecs is positive, after the timeout.
func createContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createRecognizer builds the configured OCR engine.
func createRecognizer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ocr.Recognizer, error) {
	if cfg.OCREngine != ocr.EngineTesseract {
		hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""
		if !hasCredentials {
			log.Warn().
				Str("engine", cfg.OCREngine).
				Msg("No explicit Google Cloud credentials, falling back to Application Default Credentials")
		}
	}

	recognizer, err := ocr.NewRecognizer(ctx, cfg.OCRConfig())
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials validation failed")
			return nil, fmt.Errorf("Google Cloud credentials validation failed. Please verify:\n\n" +
				"1. Credentials file exists and is readable\n" +
				"2. JSON format is valid\n" +
				"3. Service account has proper permissions\n\n" +
				"Original error: %w", err)
		}
		log.Error().
			Err(err).
			Str("engine", cfg.OCREngine).
			Msg("Failed to create OCR engine")
		return nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	log.Debug().Str("engine", recognizer.Name()).Msg("OCR engine created")
	return recognizer, nil
}

// createSpeaker resolves the configured synthesizer command.
func createSpeaker(cfg *config.Config, log zerolog.Logger) (*speech.CommandSpeaker, error) {
	speaker, err := speech.NewCommandSpeaker(cfg.SpeechCommand)
	if err != nil {
		log.Error().
			Err(err).
			Str("command", cfg.SpeechCommand).
			Msg("Speech synthesizer unavailable")
		return nil, fmt.Errorf("speech synthesizer %q not found. Install it or set SPEECH_COMMAND (e.g. espeak, say): %w",
			cfg.SpeechCommand, err)
	}
	return speaker, nil
}
