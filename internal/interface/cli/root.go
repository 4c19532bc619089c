package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/neilberkman/gptwrapped/internal/core/config"
	"github.com/neilberkman/gptwrapped/internal/core/logging"
	"github.com/neilberkman/gptwrapped/internal/core/topics"
	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
)

var (
	dbPath      string
	configDir   string
	logLevel    string
	versionInfo string

	cfg    *config.Config
	logger = zerolog.Nop()
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gptwrapped",
	Short: "Year-in-review stats for ChatGPT exports",
	Long: `gptwrapped - your year with ChatGPT, from a conversations.json export

Counts your words, messages and conversations for a year, finds your busiest
months and longest conversation, groups your chats into topics and compares
your totals with everyone else who has run it against the same database.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", config.Dir(), "Configuration directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig applies config files, then environment, then flags
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadFrom(configDir)
	if err != nil {
		return err
	}
	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}

	cfg = loaded
	logger = logging.New(cfg.LogLevel, os.Stderr)
	return nil
}

// newStore picks PostgreSQL when a DSN is configured, SQLite otherwise
func newStore() *userstats.Store {
	if cfg.PostgresDSN != "" {
		logger.Debug().Msg("Using PostgreSQL stats store")
		return userstats.New(userstats.PostgresOpener(cfg.PostgresDSN), logger)
	}
	logger.Debug().Str("path", cfg.DBPath).Msg("Using SQLite stats store")
	return userstats.New(userstats.SQLiteOpener(cfg.DBPath), logger)
}

func newService(store *userstats.Store) *wrapped.Service {
	builder := wrapped.NewBuilder(wrapped.Options{
		Year:         cfg.Year,
		WordsPerBook: cfg.WordsPerBook,
		TopTopics:    cfg.TopTopics,
	}, topics.NewKeywordExtractor(), logger)

	return wrapped.NewService(builder, wrapped.NewComparer(store), cfg.ReportTemplate, logger)
}
