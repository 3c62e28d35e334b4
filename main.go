package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"visionassist/cmd"
	"visionassist/internal/config"
	"visionassist/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	if err := logger.Setup(loggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mainLog := logger.WithComponent("main")
	mainLog.Debug().Msg("Starting VisionAssist")
	cmd.Execute()
}

// loggerConfig reads the LOG_* settings. An invalid OCR or preprocessing
// setting is reported by the command that needs it, so logging falls back
// to defaults here rather than failing startup.
func loggerConfig() logger.LogConfig {
	cfg, err := config.Load()
	if err != nil {
		return logger.DefaultConfig()
	}
	return cfg.GetLoggerConfig()
}
