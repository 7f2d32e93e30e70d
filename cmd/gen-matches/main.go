package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/elorank/internal/matchgen"
	"github.com/okian/elorank/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers = 20
	defaultMatches = 1000
)

func main() {
	var (
		players = flag.Int("players", defaultPlayers, "Number of distinct players")
		matches = flag.Int("matches", defaultMatches, "Number of matches to generate")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "Random seed; repeat a seed to repeat a log")
		uuids   = flag.Bool("uuid", false, "Use uuid player ids instead of player_N")
		dates   = flag.Bool("dates", false, "Emit a date column, one hour apart")
		start   = flag.String("start", "2024-01-01", "Date of the first match (YYYY-MM-DD) when -dates is set")
		output  = flag.String("out", "", "Output CSV file (default: stdout)")
	)
	flag.Parse()

	// Logs go to stderr so stdout stays a clean CSV stream.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	startDate, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &matchgen.Config{
		Players:    *players,
		Matches:    *matches,
		Seed:       *seed,
		UUIDs:      *uuids,
		Dates:      *dates,
		Start:      startDate,
		OutputFile: *output,
	}
	if _, err := matchgen.Run(ctx, cfg, os.Stdout); err != nil {
		logger.Get().Error(ctx, "generation failed", logger.Error(err), logger.Any("seed", *seed))
		stop()
		os.Exit(1)
	}
}
