package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionassist/internal/actions"
	"visionassist/internal/config"
	"visionassist/internal/logger"
	"visionassist/internal/pipeline"
	"visionassist/internal/speech"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Recognize, classify and suggest actions for an image",
	Long: `Run OCR on an image, classify the recognized text and list quick actions.

The OCR engine is selected with OCR_ENGINE:
  tesseract  - local recognition (default, needs tesseract language data)
  vision     - Google Cloud Vision text detection
  documentai - Google Document AI OCR processor

Google engines read credentials from:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  Application Default Credentials otherwise`,
	Example: `  # Scan a photo of a medicine label
  visionassist scan label.jpg

  # Output the full report as JSON
  visionassist scan receipt.png --json

  # Read the result aloud and open the first suggested action
  visionassist scan poster.jpg --speak --act 1`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

// ScanOutput is the JSON output of the scan command.
type ScanOutput struct {
	*pipeline.Report
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("json", false, "Output as JSON")
	scanCmd.Flags().Bool("speak", false, "Read the result aloud")
	scanCmd.Flags().Int("act", 0, "Perform the numbered suggested action")
	scanCmd.Flags().Int("timeout", 60, "Recognition timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	speak, _ := cmd.Flags().GetBool("speak")
	act, _ := cmd.Flags().GetInt("act")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info().
		Str("file", imagePath).
		Str("engine", cfg.OCREngine).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting scan")

	fileInfo, err := validateImageFile(imagePath, cfg.MaxImageBytes, log)
	if err != nil {
		return err
	}

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	recognizer, err := createRecognizer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := recognizer.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", imagePath).
			Msg("Failed to read image file")
		return fmt.Errorf("failed to read image file: %w", err)
	}

	scanner := pipeline.NewScanner(recognizer, pipeline.WithPreprocessOptions(cfg.PreprocessOptions()))
	report, err := scanner.Scan(ctx, pipeline.NewFrame(filepath.Base(imagePath), data))
	if err != nil {
		return handleScanError(err, log)
	}

	log.Info().
		Bool("idle", report.Idle).
		Int("actions", len(report.Actions)).
		Dur("latency", report.Latency).
		Msg("Scan completed successfully")

	if err := outputReport(report, fileInfo, jsonOutput, log); err != nil {
		return err
	}

	if speak {
		if err := speakReport(report, cfg, log); err != nil {
			return err
		}
	}

	if act > 0 {
		if act > len(report.Actions) {
			return fmt.Errorf("action %d does not exist; %d action(s) were suggested", act, len(report.Actions))
		}
		suggestion := report.Actions[act-1]
		if err := actions.NewSystemDispatcher().Dispatch(ctx, suggestion); err != nil {
			return handleActionError(err, suggestion, log)
		}
		if suggestion.Effect.Kind == actions.EffectCopy {
			fmt.Fprintln(os.Stderr, "Copied!")
		}
	}

	return nil
}

// validateImageFile checks that the file exists, is readable and fits the size limit
func validateImageFile(imagePath string, maxBytes int64, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", imagePath).
				Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", imagePath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if !isImageFile(imagePath) {
		log.Warn().
			Str("file", imagePath).
			Msg("File does not have a known image extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", imagePath).
			Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	if fileInfo.Size() > maxBytes {
		log.Error().
			Str("file", imagePath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", maxBytes).
			Msg("Image file exceeds maximum size limit")
		return nil, fmt.Errorf("image file too large (%d bytes). Maximum size is %d bytes",
			fileInfo.Size(), maxBytes)
	}

	return fileInfo, nil
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

func isImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// outputReport writes the report to stdout
func outputReport(report *pipeline.Report, fileInfo os.FileInfo, jsonOutput bool, log zerolog.Logger) error {
	if !jsonOutput {
		printReport(os.Stdout, report, false)
		return nil
	}

	output := ScanOutput{
		Report:   report,
		FileName: filepath.Base(fileInfo.Name()),
		FileSize: fileInfo.Size(),
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// speakReport reads a single report aloud and waits for the synthesizer.
func speakReport(report *pipeline.Report, cfg *config.Config, log zerolog.Logger) error {
	speaker, err := createSpeaker(cfg, log)
	if err != nil {
		return err
	}

	announcer := speech.NewAnnouncer(speaker)
	announcer.Trigger()
	said, err := announcer.Announce(report)
	if err != nil {
		return fmt.Errorf("failed to read aloud: %w", err)
	}
	if said == "" {
		return nil
	}

	for speaker.IsSpeaking() {
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
