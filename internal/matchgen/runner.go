package matchgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/elorank/internal/adapters/storage/csvfile"
	"github.com/okian/elorank/pkg/logger"
)

const outputDirPermission = 0o755

// Run generates a match log and writes it as CSV to cfg.OutputFile, or to
// stdout when no file is set.
func Run(ctx context.Context, cfg *Config, stdout io.Writer) (Stats, error) {
	start := time.Now()
	g, err := New(*cfg)
	if err != nil {
		return Stats{}, err
	}
	matches, err := g.Generate(ctx)
	if err != nil {
		return Stats{}, err
	}

	if cfg.OutputFile == "" {
		if err := csvfile.EncodeMatches(stdout, matches, cfg.Dates, ','); err != nil {
			return Stats{}, err
		}
	} else if err := writeFile(cfg.OutputFile, func(w io.Writer) error {
		return csvfile.EncodeMatches(w, matches, cfg.Dates, ',')
	}); err != nil {
		return Stats{}, err
	}

	stats := Stats{Players: cfg.Players, Matches: len(matches), Duration: time.Since(start)}
	if cfg.OutputFile != "" {
		logger.Get().Info(ctx, "match log written",
			logger.String("file", cfg.OutputFile),
			logger.Int("players", stats.Players),
			logger.Int("matches", stats.Matches),
			logger.Duration("duration", stats.Duration),
		)
	}
	return stats, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), outputDirPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
