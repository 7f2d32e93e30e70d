// Package backend builds storage sources and sinks from configured kinds.
package backend

import (
	"fmt"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/adapters/storage/csvfile"
	"github.com/okian/elorank/internal/adapters/storage/sqlite"
	"github.com/okian/elorank/internal/adapters/storage/xlsx"
	"github.com/okian/elorank/internal/config"
)

// NewSource returns the match log reader for kind. sheet names the worksheet
// for xlsx and the table for sqlite; csv ignores it and takes csvOpts instead.
func NewSource(kind, path, sheet string, csvOpts ...csvfile.Option) (storage.Source, error) {
	switch kind {
	case config.KindCSV:
		return csvfile.NewSource(path, csvOpts...), nil
	case config.KindXLSX:
		return xlsx.NewSource(path, sheet), nil
	case config.KindSQLite:
		return sqlite.NewSource(path, sheet), nil
	}
	return nil, fmt.Errorf("%w: source %q", storage.ErrUnsupportedKind, kind)
}

// NewSink returns the ranking writer for kind.
func NewSink(kind, path, sheet string, csvOpts ...csvfile.Option) (storage.Sink, error) {
	switch kind {
	case config.KindCSV:
		return csvfile.NewSink(path, csvOpts...), nil
	case config.KindXLSX:
		return xlsx.NewSink(path, sheet), nil
	case config.KindSQLite:
		return sqlite.NewSink(path, sheet), nil
	}
	return nil, fmt.Errorf("%w: sink %q", storage.ErrUnsupportedKind, kind)
}

// FromConfig builds both ends of a run from cfg.
func FromConfig(cfg *config.Config) (storage.Source, storage.Sink, error) {
	comma := csvfile.WithComma(cfg.Comma())
	src, err := NewSource(cfg.SourceKind, cfg.SourcePath, cfg.SourceSheet, comma)
	if err != nil {
		return nil, nil, err
	}
	sink, err := NewSink(cfg.SinkKind, cfg.SinkPath, cfg.SinkSheet, comma)
	if err != nil {
		return nil, nil, err
	}
	return src, sink, nil
}
