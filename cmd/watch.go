package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"visionassist/internal/logger"
	"visionassist/internal/pipeline"
	"visionassist/internal/speech"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Analyze camera frames as they are written to a directory",
	Long: `Watch a directory for image files and analyze each new frame.

Point a camera capture tool at the directory (for example ffmpeg writing
one JPEG per second). Only the newest frame is analyzed: while one frame
is being recognized, older unprocessed frames are skipped.

With --speech, press Enter to read the next result aloud. With --auto-read
results are read continuously, hazards first.`,
	Example: `  # Watch frames written by ffmpeg
  ffmpeg -f v4l2 -i /dev/video0 -vf fps=1 -update 1 frames/latest.jpg &
  visionassist watch frames

  # Read results aloud continuously
  visionassist watch frames --auto-read

  # Emit one JSON report per line
  visionassist watch frames --json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Bool("json", false, "Emit one JSON report per line")
	watchCmd.Flags().Bool("speech", false, "Enable speech; press Enter to read the next result")
	watchCmd.Flags().Bool("auto-read", false, "Read results aloud continuously (default from AUTO_READ)")
	watchCmd.Flags().Bool("no-color", false, "Disable colored status lines")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	speechEnabled, _ := cmd.Flags().GetBool("speech")
	noColor, _ := cmd.Flags().GetBool("no-color")

	dir := args[0]

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	autoRead := cfg.AutoRead
	if cmd.Flags().Changed("auto-read") {
		autoRead, _ = cmd.Flags().GetBool("auto-read")
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	ctx, cancel := createContext(0, log)
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

	var announcer *speech.Announcer
	if speechEnabled || autoRead {
		speaker, err := createSpeaker(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = speaker.Stop() }()

		announcer = speech.NewAnnouncer(speaker)
		if autoRead {
			if err := announcer.SetAutoRead(true); err != nil {
				log.Warn().Err(err).Msg("Failed to enable auto-read")
			}
		}
		go triggerOnEnter(ctx, announcer, log)
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	onReport := func(report *pipeline.Report) {
		if jsonOutput {
			if err := enc.Encode(report); err != nil {
				log.Error().Err(err).Msg("Failed to write report")
			}
		} else {
			printReport(out, report, !noColor)
			fmt.Fprintln(out)
		}
		if announcer != nil {
			if _, err := announcer.Announce(report); err != nil {
				log.Warn().Err(err).Msg("Failed to read result aloud")
			}
		}
	}
	onError := func(frame pipeline.Frame, err error) {
		// frames are often caught mid-write; the next write event retries
		fmt.Fprintln(os.Stderr, handleScanError(err, log))
	}

	scanner := pipeline.NewScanner(recognizer, pipeline.WithPreprocessOptions(cfg.PreprocessOptions()))
	analyzer := pipeline.NewAnalyzer(scanner, onReport, onError)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Info().
		Str("dir", dir).
		Str("engine", recognizer.Name()).
		Bool("auto_read", autoRead).
		Msg("Watching for frames")

	errCh := make(chan error, 1)
	go func() { errCh <- analyzer.Run(ctx) }()

	err = watchFrames(ctx, watcher, analyzer, cfg.MaxImageBytes, log)
	cancel()
	<-errCh

	stats := analyzer.Stats()
	log.Info().
		Int("submitted", stats.Submitted).
		Int("processed", stats.Processed).
		Int("dropped", stats.Dropped).
		Int("failed", stats.Failed).
		Msg("Watch stopped")

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// watchFrames submits every created or rewritten image file until ctx ends.
func watchFrames(ctx context.Context, watcher *fsnotify.Watcher, analyzer *pipeline.Analyzer, maxBytes int64, log zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("File watcher error")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isImageFile(event.Name) {
				continue
			}

			frame, err := readFrame(event.Name, maxBytes)
			if err != nil {
				log.Debug().Err(err).Str("file", event.Name).Msg("Skipping frame")
				continue
			}
			if analyzer.Submit(frame) {
				log.Debug().Str("file", event.Name).Msg("Analyzer busy, older frame dropped")
			}
		}
	}
}

func readFrame(path string, maxBytes int64) (pipeline.Frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return pipeline.Frame{}, err
	}
	if info.Size() == 0 {
		return pipeline.Frame{}, fmt.Errorf("empty file")
	}
	if info.Size() > maxBytes {
		return pipeline.Frame{}, fmt.Errorf("file too large: %d bytes", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Frame{}, err
	}
	return pipeline.NewFrame(filepath.Base(path), data), nil
}

// triggerOnEnter requests a manual read each time a line arrives on stdin.
func triggerOnEnter(ctx context.Context, announcer *speech.Announcer, log zerolog.Logger) {
	lines := bufio.NewScanner(os.Stdin)
	for lines.Scan() {
		if ctx.Err() != nil {
			return
		}
		log.Debug().Msg("Manual read requested")
		announcer.Trigger()
	}
}
