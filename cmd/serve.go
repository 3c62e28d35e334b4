package cmd

import (
	"github.com/spf13/cobra"

	"visionassist/internal/logger"
	"visionassist/internal/ocr"
	"visionassist/internal/pipeline"
	"visionassist/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classify and scan API over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /health       liveness and OCR availability
  POST /v1/classify  JSON {"text": "..."}, classified without OCR
  POST /v1/scan      image as the raw body or multipart field "image"

If the OCR engine cannot be created the server still starts and
/v1/scan answers 503.`,
	Example: `  # Serve on the default HTTP_ADDR (:8080)
  visionassist serve

  # Classify text through the API
  curl -d '{"text":"Total amount due"}' localhost:8080/v1/classify

  # Scan an image
  curl --data-binary @label.jpg localhost:8080/v1/scan`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	ctx, cancel := createContext(0, log)
	defer cancel()

	var recognizer ocr.Recognizer
	if rec, err := createRecognizer(ctx, cfg, log); err != nil {
		log.Warn().Err(err).Msg("OCR unavailable, serving classification only")
	} else {
		recognizer = rec
		defer func() {
			if closeErr := rec.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
			}
		}()
	}

	scanner := pipeline.NewScanner(recognizer, pipeline.WithPreprocessOptions(cfg.PreprocessOptions()))
	return server.New(scanner, cfg.MaxImageBytes).ListenAndServe(ctx, addr)
}
