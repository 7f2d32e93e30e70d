package matchgen

import (
	"errors"
	"time"
)

// ErrInvalidConfig reports generator settings that cannot produce a log.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config holds configuration for a generated match log.
type Config struct {
	Players    int       // Number of distinct players
	Matches    int       // Number of matches to generate
	Seed       int64     // Seed for the deterministic random source
	UUIDs      bool      // Use uuid player ids instead of player_N
	Dates      bool      // Emit a date column
	Start      time.Time // Date of the first match when Dates is set
	OutputFile string    // Destination; empty means stdout
}

// Stats holds generation statistics.
type Stats struct {
	Players  int
	Matches  int
	Duration time.Duration
}

func (c *Config) validate() error {
	switch {
	case c.Players < 2:
		return errors.Join(ErrInvalidConfig, errors.New("need at least two players"))
	case c.Matches < 0:
		return errors.Join(ErrInvalidConfig, errors.New("match count must not be negative"))
	}
	return nil
}
