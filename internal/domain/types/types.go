// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/elorank/internal/domain/rating"
)

// Entry represents a ranking row as served over the API.
type Entry struct {
	Rank        int     `json:"rank"`
	Player      string  `json:"player"`
	Rating      float64 `json:"rating"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	LastPlayed  string  `json:"last_played,omitempty"`
}

// FromRow converts a ranking row. LastPlayed is rendered as RFC3339 UTC.
func FromRow(r rating.Row) Entry {
	e := Entry{
		Rank:        r.Rank,
		Player:      r.Player,
		Rating:      r.Rating,
		GamesPlayed: r.GamesPlayed,
		Wins:        r.Wins,
		Losses:      r.Losses,
		WinRate:     r.WinRate,
	}
	if r.LastPlayed != nil {
		e.LastPlayed = r.LastPlayed.UTC().Format(time.RFC3339)
	}
	return e
}

// FromRows converts a slice of ranking rows, preserving order.
func FromRows(rows []rating.Row) []Entry {
	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = FromRow(r)
	}
	return out
}
