// Package sqlite reads match logs from and writes rankings to SQLite tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/internal/domain/rating"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`) //nolint:gochecknoglobals // compiled once

// Open opens the database at path with a busy timeout so a concurrent reader
// does not fail the write.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

func quote(table string) (string, error) {
	if !identifier.MatchString(table) {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidTable, table)
	}
	return `"` + table + `"`, nil
}

// Source reads a match log from a table, in rowid order.
type Source struct {
	path  string
	table string
}

// NewSource creates a Source for table in the database at path.
func NewSource(path, table string) *Source {
	return &Source{path: path, table: table}
}

// ReadMatches implements storage.Source.
func (s *Source) ReadMatches(ctx context.Context) ([]model.MatchRecord, error) {
	name, err := quote(s.table)
	if err != nil {
		return nil, err
	}
	db, err := Open(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+name+" ORDER BY rowid") //nolint:gosec // table name validated by quote
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", s.table, err)
	}
	cols, err := storage.ParseHeader(header)
	if err != nil {
		return nil, err
	}

	cells := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range cells {
		dest[i] = &cells[i]
	}

	var out []model.MatchRecord
	for line := 1; rows.Next(); line++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", line, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		m, err := cols.Record(row, line)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return out, nil
}

// Sink replaces a table with the ranking, inside a single transaction.
type Sink struct {
	path  string
	table string
}

// NewSink creates a Sink for table in the database at path.
func NewSink(path, table string) *Sink {
	return &Sink{path: path, table: table}
}

// WriteRankings implements storage.Sink.
func (s *Sink) WriteRankings(ctx context.Context, table rating.Table) (err error) {
	name, err := quote(s.table)
	if err != nil {
		return err
	}
	db, err := Open(ctx, s.path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop %s: %w", s.table, err)
	}
	// Columns carry the same labels as the text outputs, after a leading rank.
	if _, err = tx.ExecContext(ctx, `CREATE TABLE `+name+` (
		"Rank"         INTEGER PRIMARY KEY,
		"Player"       TEXT    NOT NULL,
		"Rating"       REAL    NOT NULL,
		"Games Played" INTEGER NOT NULL,
		"Wins"         INTEGER NOT NULL,
		"Losses"       INTEGER NOT NULL,
		"Win Rate"     REAL    NOT NULL,
		"Last Played"  TEXT
	)`); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+name+`
		("Rank", "Player", "Rating", "Games Played", "Wins", "Losses", "Win Rate", "Last Played")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`) //nolint:gosec // table name validated by quote
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range table {
		var last sql.NullString
		if r.LastPlayed != nil {
			last = sql.NullString{String: storage.FormatDate(r.LastPlayed), Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, r.Rank, r.Player, r.Rating, r.GamesPlayed, r.Wins, r.Losses, r.WinRate, last); err != nil {
			return fmt.Errorf("insert %s: %w", r.Player, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
