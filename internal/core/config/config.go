package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

const DefaultReportTemplate = `You sent **{{words}} words** this year, that's about **{{books}} books** worth.`

// EnvPrefix prefixes every environment override, e.g. GPTWRAPPED_DB_PATH
const EnvPrefix = "GPTWRAPPED"

type Config struct {
	DBPath         string `toml:"db_path" envconfig:"DB_PATH"`
	PostgresDSN    string `toml:"postgres_dsn" envconfig:"POSTGRES_DSN"` // Use PostgreSQL instead of SQLite when set
	Year           int    `toml:"year" envconfig:"YEAR"`                 // 0 means the current year
	TopTopics      int    `toml:"top_topics" envconfig:"TOP_TOPICS"`
	WordsPerBook   int    `toml:"words_per_book" envconfig:"WORDS_PER_BOOK"`
	LogLevel       string `toml:"log_level" envconfig:"LOG_LEVEL"`
	HTTPAddr       string `toml:"http_addr" envconfig:"HTTP_ADDR"`
	ReportTemplate string `toml:"report_template" envconfig:"REPORT_TEMPLATE"`
}

// Dir returns the configuration directory, ~/.config/gptwrapped
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "gptwrapped")
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath:         filepath.Join(Dir(), "wrapped.db"),
		TopTopics:      5,
		WordsPerBook:   70000,
		LogLevel:       "info",
		HTTPAddr:       ":8080",
		ReportTemplate: DefaultReportTemplate,
	}
}

// Load reads config from ~/.config/gptwrapped/ and applies environment overrides
func Load() (*Config, error) {
	return LoadFrom(Dir())
}

// LoadFrom reads config.toml and report_template.mustache from configDir.
// Missing files keep the defaults; GPTWRAPPED_* variables win over both.
func LoadFrom(configDir string) (*Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(configDir, "config.toml")
	templatePath := filepath.Join(configDir, "report_template.mustache")

	// Load TOML config if it exists
	if _, err := os.Stat(tomlPath); err == nil {
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
	}

	// If custom template exists, use it
	if data, err := os.ReadFile(templatePath); err == nil {
		cfg.ReportTemplate = string(data)
	}

	// Unset variables leave the loaded values alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.WordsPerBook <= 0 {
		cfg.WordsPerBook = Default().WordsPerBook
	}

	return cfg, nil
}
