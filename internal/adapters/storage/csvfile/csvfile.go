// Package csvfile reads match logs from and writes rankings to delimited files.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/internal/domain/rating"
)

const dirPermission = 0o755

// Option applies a configuration option to a Source or Sink.
type Option func(*options)

type options struct {
	comma rune
}

// WithComma sets the field delimiter (default ',').
func WithComma(r rune) Option {
	return func(o *options) {
		if r != 0 && r != '\n' && r != '\r' && r != '"' {
			o.comma = r
		}
	}
}

func apply(opts []Option) options {
	o := options{comma: ','}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Source reads a match log with a header row from a delimited file.
type Source struct {
	path string
	opts options
}

// NewSource creates a Source for the file at path.
func NewSource(path string, opts ...Option) *Source {
	return &Source{path: path, opts: apply(opts)}
}

// ReadMatches implements storage.Source.
func (s *Source) ReadMatches(ctx context.Context) ([]model.MatchRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open match log: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(ctx, f, s.opts.comma)
}

// Decode parses a delimited match log from r.
func Decode(ctx context.Context, r io.Reader, comma rune) ([]model.MatchRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file has no header", storage.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := storage.ParseHeader(header)
	if err != nil {
		return nil, err
	}

	var out []model.MatchRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read match log: %w", err)
		}
		if storage.Blank(row) {
			continue
		}
		// The csv reader skips empty lines, so ask it where the row started.
		line, _ := cr.FieldPos(0)
		m, err := cols.Record(row, line)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Sink writes a ranking table to a delimited file, replacing it atomically.
type Sink struct {
	path string
	opts options
}

// NewSink creates a Sink for the file at path.
func NewSink(path string, opts ...Option) *Sink {
	return &Sink{path: path, opts: apply(opts)}
}

// WriteRankings implements storage.Sink.
func (s *Sink) WriteRankings(ctx context.Context, table rating.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, table, s.opts.comma); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// Encode writes the header and one line per ranking row to w.
func Encode(w io.Writer, table rating.Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(storage.OutputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range table {
		if err := cw.Write(storage.TextRow(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.Player, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EncodeMatches writes a match log in the input schema. The date column is
// included when withDate is set; records without a date leave it empty.
func EncodeMatches(w io.Writer, matches []model.MatchRecord, withDate bool, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	header := []string{storage.ColPlayerA, storage.ColPlayerB, storage.ColResultA, storage.ColResultB}
	if withDate {
		header = append(header, storage.ColDate)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for i, m := range matches {
		row[0], row[1] = m.PlayerA, m.PlayerB
		row[2], row[3] = strconv.Itoa(m.ResultA), strconv.Itoa(m.ResultB)
		if withDate {
			row[4] = storage.FormatDate(m.Date)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write match %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
