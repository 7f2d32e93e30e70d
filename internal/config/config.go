// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers an optional YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig; load failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Storage backend kinds understood by the source and sink settings.
const (
	KindCSV    = "csv"
	KindXLSX   = "xlsx"
	KindSQLite = "sqlite"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// Serve keeps the process running with the HTTP API after the first run.
	Serve bool `koanf:"serve"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// SourceKind selects the match log backend: csv, xlsx or sqlite.
	SourceKind string `koanf:"source_kind"`
	// SourcePath is the file (or database) holding the match log.
	SourcePath string `koanf:"source_path"`
	// SourceSheet names the worksheet (xlsx) or table (sqlite) to read.
	SourceSheet string `koanf:"source_sheet"`

	// SinkKind selects the ranking destination backend: csv, xlsx or sqlite.
	SinkKind string `koanf:"sink_kind"`
	// SinkPath is the file (or database) the ranking is written to.
	SinkPath string `koanf:"sink_path"`
	// SinkSheet names the worksheet (xlsx) or table (sqlite) to replace.
	SinkSheet string `koanf:"sink_sheet"`

	// CSVComma is the field delimiter for csv sources and sinks.
	CSVComma string `koanf:"csv_comma"`

	// InitialRating, KMin and KMax tune the rating engine.
	InitialRating float64 `koanf:"initial_rating"`
	KMin          float64 `koanf:"k_min"`
	KMax          float64 `koanf:"k_max"`

	// MaxLeaderboardLimit caps GET /rankings?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		SourceKind:          KindCSV,
		SourcePath:          "input/matches.csv",
		SourceSheet:         "matches",
		SinkKind:            KindCSV,
		SinkPath:            "output/rankings.csv",
		SinkSheet:           "rankings",
		CSVComma:            ",",
		InitialRating:       1000,
		KMin:                20,
		KMax:                40,
		MaxLeaderboardLimit: 100,
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Serve && strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty when serving", ErrInvalidConfig)
	case !validKind(c.SourceKind):
		return fmt.Errorf("%w: unknown source_kind %q", ErrInvalidConfig, c.SourceKind)
	case !validKind(c.SinkKind):
		return fmt.Errorf("%w: unknown sink_kind %q", ErrInvalidConfig, c.SinkKind)
	case strings.TrimSpace(c.SourcePath) == "":
		return fmt.Errorf("%w: source_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.SinkPath) == "":
		return fmt.Errorf("%w: sink_path must not be empty", ErrInvalidConfig)
	case !validComma(c.CSVComma):
		return fmt.Errorf("%w: csv_comma must be a single character other than a quote or newline, got %q", ErrInvalidConfig, c.CSVComma)
	case c.KMin <= 0 || c.KMax < c.KMin:
		return fmt.Errorf("%w: k range must satisfy 0 < k_min <= k_max, got %v..%v", ErrInvalidConfig, c.KMin, c.KMax)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// Comma returns the csv delimiter as a rune. It assumes a validated config.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.CSVComma)
	return r
}

func validComma(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && r != '"' && r != '\r' && r != '\n'
}

func validKind(kind string) bool {
	switch kind {
	case KindCSV, KindXLSX, KindSQLite:
		return true
	}
	return false
}
