package rating

import (
	"math"
	"sort"
	"time"
)

// Row is one player's line in the ranking table.
type Row struct {
	Rank        int
	Player      string
	Rating      float64
	GamesPlayed int
	Wins        int
	Losses      int
	WinRate     float64
	LastPlayed  *time.Time
}

// Table is the final ranking, best rating first.
type Table []Row

// Table projects the current ledger state into a ranking table.
//
// Ordering: rating DESC on the unrounded value, then first appearance ASC.
func (l *Ledger) Table() Table {
	type ranked struct {
		row    Row
		rating float64
	}

	all := make([]ranked, 0, len(l.order))
	for _, id := range l.order {
		p := l.players[id]
		all = append(all, ranked{
			rating: p.Rating,
			row: Row{
				Player:      id,
				Rating:      round2(p.Rating),
				GamesPlayed: p.GamesPlayed,
				Wins:        p.Wins,
				Losses:      p.Losses,
				WinRate:     round2(p.WinRate()),
				LastPlayed:  p.LastPlayed,
			},
		})
	}

	// all is in first-seen order, so a stable sort keeps that order on ties.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].rating > all[j].rating
	})

	out := make(Table, len(all))
	for i, r := range all {
		r.row.Rank = i + 1
		out[i] = r.row
	}
	return out
}

// Find returns the row for a player.
func (t Table) Find(player string) (Row, bool) {
	for _, r := range t {
		if r.Player == player {
			return r, true
		}
	}
	return Row{}, false
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
