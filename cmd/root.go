package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visionassist/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "visionassist",
	Short: "VisionAssist - read, classify and act on text seen by a camera",
	Long: `VisionAssist recognizes text in camera frames, classifies it as medical,
financial, technical, dining, hazard or plain document text, and suggests
quick actions: call a phone number, open a link, or copy the text.

Frames come from image files, a watched directory fed by a camera, or the
HTTP API. Results can be read aloud through a local speech synthesizer.`,
	Version: version,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
