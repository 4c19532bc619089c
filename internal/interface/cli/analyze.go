package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

var (
	analyzeYear   string
	analyzeName   string
	analyzeNoSave bool
	analyzeCopy   bool
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <conversations.json>",
	Short: "Build your year-in-review from an export",
	Long: `Read a ChatGPT conversations.json export and print a year-in-review.

Totals are recorded (keyed by a fingerprint of the archive, never its content)
so you can see how you compare with everyone else. Use --no-save to skip that.

Examples:
  gptwrapped analyze conversations.json
  gptwrapped analyze conversations.json --year 2024
  gptwrapped analyze conversations.json --year "last year" --name Ada --copy
  gptwrapped analyze conversations.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeYear, "year", "", "Year to report on, e.g. 2024 or 'last year' (default: config or current year)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "Your name, for the headline")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Do not record totals or compare with other users")
	analyzeCmd.Flags().BoolVar(&analyzeCopy, "copy", false, "Copy a plain-text summary to the clipboard")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	year := cfg.Year
	if analyzeYear != "" || year == 0 {
		parsed, err := wrapped.ParseYear(analyzeYear, time.Now())
		if err != nil {
			return err
		}
		year = parsed
	}

	conversations, err := chatexport.ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	var progress wrapped.ProgressCallback
	if !analyzeJSON && len(conversations) > 0 {
		progress = wrapped.NewProgressReporter(os.Stderr, len(conversations))
	}

	svc := newService(newStore())
	result, err := svc.Analyze(cmd.Context(), conversations, wrapped.Request{
		Year:     year,
		Name:     analyzeName,
		NoSave:   analyzeNoSave,
		Progress: progress,
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		fmt.Println(renderResult(result, analyzeName, analyzeNoSave))
	}

	if analyzeCopy {
		if err := clipboard.WriteAll(plainSummary(result, analyzeName)); err != nil {
			logger.Warn().Err(err).Msg("Failed to copy to clipboard")
		} else if !analyzeJSON {
			fmt.Println(hintStyle.Render("Copied summary to clipboard"))
		}
	}

	return nil
}
