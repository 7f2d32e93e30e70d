// Package xlsx reads match logs from and writes rankings to spreadsheet
// workbooks. The ranking worksheet is cleared and rebuilt on every write so
// its size always matches the table.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/internal/domain/rating"
	"github.com/xuri/excelize/v2"
)

const (
	dirPermission = 0o755
	scratchSheet  = "_elorank_tmp"
)

// Source reads a match log from one worksheet of a workbook.
type Source struct {
	path  string
	sheet string
}

// NewSource creates a Source. An empty sheet name selects the first worksheet.
func NewSource(path, sheet string) *Source {
	return &Source{path: path, sheet: sheet}
}

// ReadMatches implements storage.Source.
func (s *Source) ReadMatches(ctx context.Context) ([]model.MatchRecord, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	// Raw values keep numeric results unformatted and dates as serial numbers.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header", storage.ErrMissingColumn, sheet)
	}

	cols, err := storage.ParseHeader(rows[0])
	if err != nil {
		return nil, err
	}

	var out []model.MatchRecord
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if storage.Blank(row) {
			continue
		}
		if cols.HasDate() {
			row = serialDateToText(row, cols.DateIndex())
		}
		m, err := cols.Record(row, i+2)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// serialDateToText rewrites a date cell stored as a spreadsheet serial number
// into RFC3339 so it parses like a text date.
func serialDateToText(row []string, idx int) []string {
	if idx >= len(row) {
		return row
	}
	serial, err := strconv.ParseFloat(row[idx], 64)
	if err != nil {
		return row
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return row
	}
	out := append([]string(nil), row...)
	out[idx] = t.UTC().Format(time.RFC3339)
	return out
}

// Sink writes a ranking table into one worksheet of a workbook. Other
// worksheets of an existing workbook are preserved.
type Sink struct {
	path  string
	sheet string
}

// NewSink creates a Sink. An empty sheet name defaults to "Rankings".
func NewSink(path, sheet string) *Sink {
	if sheet == "" {
		sheet = "Rankings"
	}
	return &Sink{path: path, sheet: sheet}
}

// WriteRankings implements storage.Sink.
func (s *Sink) WriteRankings(ctx context.Context, table rating.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if created {
		err = f.SetSheetName(f.GetSheetName(0), s.sheet)
	} else {
		err = resetSheet(f, s.sheet)
	}
	if err != nil {
		return fmt.Errorf("prepare sheet %q: %w", s.sheet, err)
	}

	if err := setRow(f, s.sheet, 1, toAny(storage.OutputHeader)); err != nil {
		return err
	}
	for i, r := range table {
		if err := setRow(f, s.sheet, i+2, storage.ValueRow(r)); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), dirPermission); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// open loads the workbook at path, or starts a new one when none exists yet.
func (s *Sink) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("open workbook: %w", err)
	}
	return f, false, nil
}

// resetSheet leaves an empty worksheet named sheet in f, keeping every other
// worksheet. A workbook must always hold one worksheet, so an existing sheet
// is swapped out through a scratch sheet.
func resetSheet(f *excelize.File, sheet string) error {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx < 0 {
		idx, err = f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
		return nil
	}

	if _, err := f.NewSheet(scratchSheet); err != nil {
		return err
	}
	if err := f.DeleteSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetName(scratchSheet, sheet); err != nil {
		return err
	}
	if idx, err = f.GetSheetIndex(sheet); err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
