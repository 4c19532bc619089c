package cli

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show comparison database statistics",
	Long: `Display how many archives have been recorded and their average totals.

For the SQLite store the database location, size and last write are shown too.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	summary, ok := newStore().Summary(cmd.Context())
	if !ok {
		return errors.New("failed to read stats store")
	}

	fmt.Println(titleStyle.Render("Database Statistics"))
	fmt.Println()

	fmt.Printf("Users:              %s\n", humanize.Comma(int64(summary.TotalUsers)))
	fmt.Printf("Avg words:          %s\n", formatAverage(summary.AvgWords))
	fmt.Printf("Avg conversations:  %s\n", formatAverage(summary.AvgConversations))
	fmt.Printf("Avg messages:       %s\n", formatAverage(summary.AvgMessages))
	fmt.Println()

	if cfg.PostgresDSN != "" {
		fmt.Println("Database:           PostgreSQL")
		return nil
	}

	fileInfo, err := os.Stat(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	fmt.Printf("Database Location:  %s\n", cfg.DBPath)
	fmt.Printf("Database Size:      %s\n", humanize.Bytes(uint64(fileInfo.Size())))
	fmt.Printf("Last Write:         %s\n", humanize.Time(fileInfo.ModTime()))

	return nil
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "n/a"
	}
	return humanize.Comma(int64(math.Round(*avg)))
}
