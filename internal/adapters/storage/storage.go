// Package storage defines the match source and ranking sink contracts shared by
// the file, spreadsheet and database backends, plus the column schema they use.
package storage

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/internal/domain/rating"
)

// Source supplies the ordered match log.
type Source interface {
	// ReadMatches returns every match record in log order.
	ReadMatches(ctx context.Context) ([]model.MatchRecord, error)
}

// Sink persists a ranking table, replacing whatever the destination held before.
type Sink interface {
	WriteRankings(ctx context.Context, table rating.Table) error
}

// Input column names, matched case-insensitively.
const (
	ColPlayerA = "player_1"
	ColPlayerB = "player_2"
	ColResultA = "player_1_result"
	ColResultB = "player_2_result"
	ColDate    = "date"
)

// PlayerLabel is the header of the identifier column in every ranking output.
const PlayerLabel = "Player"

// OutputHeader lists the ranking columns in output order.
var OutputHeader = []string{PlayerLabel, "Rating", "Games Played", "Wins", "Losses", "Win Rate", "Last Played"} //nolint:gochecknoglobals // fixed schema

// dateLayouts are tried in order when parsing the optional date column.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} //nolint:gochecknoglobals // fixed layouts

// Columns maps input column names to their position in a row.
type Columns struct {
	playerA int
	playerB int
	resultA int
	resultB int
	date    int // -1 when the log has no date column
}

// ParseHeader locates the match columns in a header row.
func ParseHeader(header []string) (Columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	c := Columns{date: -1}
	required := []struct {
		name string
		dst  *int
	}{
		{ColPlayerA, &c.playerA},
		{ColPlayerB, &c.playerB},
		{ColResultA, &c.resultA},
		{ColResultB, &c.resultB},
	}
	for _, r := range required {
		i, ok := pos[r.name]
		if !ok {
			return Columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, r.name)
		}
		*r.dst = i
	}
	if i, ok := pos[ColDate]; ok {
		c.date = i
	}
	return c, nil
}

// HasDate reports whether the log carries a date column.
func (c Columns) HasDate() bool { return c.date >= 0 }

// DateIndex returns the position of the date column, or -1.
func (c Columns) DateIndex() int { return c.date }

// Blank reports whether every cell of a row is empty.
func Blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Record converts a data row into a match record. line is the 1-based row
// number in the source, used in error messages.
func (c Columns) Record(row []string, line int) (model.MatchRecord, error) {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	// Identifiers are opaque: " A" and "A" are different players.
	raw := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	m := model.MatchRecord{
		PlayerA: raw(c.playerA),
		PlayerB: raw(c.playerB),
	}
	if strings.TrimSpace(m.PlayerA) == "" {
		return model.MatchRecord{}, &RowError{Row: line, Column: ColPlayerA, Err: errEmptyCell}
	}
	if strings.TrimSpace(m.PlayerB) == "" {
		return model.MatchRecord{}, &RowError{Row: line, Column: ColPlayerB, Err: errEmptyCell}
	}

	var err error
	if m.ResultA, err = ParseResult(cell(c.resultA)); err != nil {
		return model.MatchRecord{}, &RowError{Row: line, Column: ColResultA, Err: err}
	}
	if m.ResultB, err = ParseResult(cell(c.resultB)); err != nil {
		return model.MatchRecord{}, &RowError{Row: line, Column: ColResultB, Err: err}
	}
	if c.date >= 0 {
		if m.Date, err = ParseDate(cell(c.date)); err != nil {
			return model.MatchRecord{}, &RowError{Row: line, Column: ColDate, Err: err}
		}
	}
	return m, nil
}

// ParseResult parses an integral result cell such as "1", "0" or "1.0".
// Range checks are left to the rating engine.
func ParseResult(s string) (int, error) {
	if s == "" {
		return 0, errEmptyCell
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not an integral result: %q", s)
	}
	return int(f), nil
}

// ParseDate parses an optional date cell. An empty cell yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil //nolint:nilnil // absent date is not an error
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised date %q", s)
}

// FormatDate renders a last-played timestamp for text outputs.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// TextRow renders a ranking row as strings in OutputHeader order.
func TextRow(r rating.Row) []string {
	return []string{
		r.Player,
		strconv.FormatFloat(r.Rating, 'f', 2, 64),
		strconv.Itoa(r.GamesPlayed),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		strconv.FormatFloat(r.WinRate, 'f', 2, 64),
		FormatDate(r.LastPlayed),
	}
}

// ValueRow renders a ranking row with native cell types in OutputHeader order.
func ValueRow(r rating.Row) []any {
	return []any{
		r.Player,
		r.Rating,
		r.GamesPlayed,
		r.Wins,
		r.Losses,
		r.WinRate,
		FormatDate(r.LastPlayed),
	}
}
