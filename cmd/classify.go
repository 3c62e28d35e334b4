package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"visionassist/internal/classifier"
	"visionassist/internal/hud"
	"visionassist/internal/logger"
	"visionassist/internal/pipeline"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text and suggest actions without OCR",
	Long: `Classify text into a category and list the quick actions it offers.

The text is taken from the arguments, joined with spaces, or read from
stdin when no arguments are given.`,
	Example: `  # Classify a phrase
  visionassist classify "Take 2 pills daily, call 555-123-4567"

  # Classify a file's contents as JSON
  visionassist classify --json < label.txt

  # Show per-category keyword counts
  visionassist classify --verbose "total tax invoice"`,
	RunE: runClassify,
}

// ClassifyOutput is the JSON output of the classify command.
type ClassifyOutput struct {
	*pipeline.Report
	Scores map[string]int `json:"scores,omitempty"`
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Bool("json", false, "Output as JSON")
	classifyCmd.Flags().Bool("verbose", false, "Include keyword counts per category")
}

func runClassify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("classify")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	c := classifier.New()
	report := pipeline.NewScanner(nil, pipeline.WithClassifier(c)).AnalyzeText(text)

	log.Debug().
		Bool("idle", report.Idle).
		Int("actions", len(report.Actions)).
		Msg("Text classified")

	var scores classifier.Scores
	if verbose {
		scores = c.Scores(text)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		output := ClassifyOutput{Report: report}
		if scores != nil {
			output.Scores = make(map[string]int, len(scores))
			for category, n := range scores {
				output.Scores[category.String()] = n
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output); err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		return nil
	}

	printReport(out, report, false)
	if verbose {
		printScores(out, scores)
	}
	return nil
}

// printReport writes the HUD line, detail text and numbered actions.
func printReport(w io.Writer, report *pipeline.Report, color bool) {
	status := hud.Render(report)
	if color {
		fmt.Fprintln(w, status.ANSI())
	} else {
		fmt.Fprintln(w, status.Line)
	}
	if report.Idle {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, status.Detail)
	if len(report.Actions) > 0 {
		fmt.Fprintln(w)
		for i, a := range report.Actions {
			fmt.Fprintf(w, "  [%d] %-12s %s\n", i+1, a.Label, a.Effect.URI())
		}
	}
}

func printScores(w io.Writer, scores classifier.Scores) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keyword counts:")
	for _, set := range classifier.DefaultKeywordSets() {
		fmt.Fprintf(w, "  %-10s %d\n", set.Category, scores[set.Category])
	}
}
