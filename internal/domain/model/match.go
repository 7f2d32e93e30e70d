// Package model contains domain models passed between layers.
package model

import "time"

// MatchRecord is one pairwise match outcome read from a match log.
// Exactly one of ResultA and ResultB is 1; the other is 0.
type MatchRecord struct {
	PlayerA string     // first player identifier
	PlayerB string     // second player identifier
	ResultA int        // 1 if PlayerA won, otherwise 0
	ResultB int        // 1 if PlayerB won, otherwise 0
	Date    *time.Time // optional; never used for ordering
}

// Winner returns the identifier of the player whose result is 1.
// The record is assumed valid.
func (m MatchRecord) Winner() string {
	if m.ResultA == 1 {
		return m.PlayerA
	}
	return m.PlayerB
}

// Loser returns the identifier of the player whose result is 0.
// The record is assumed valid.
func (m MatchRecord) Loser() string {
	if m.ResultA == 1 {
		return m.PlayerB
	}
	return m.PlayerA
}

// PlayerState is the running state of a single player during a ranking pass.
type PlayerState struct {
	Rating      float64
	GamesPlayed int
	Wins        int
	Losses      int
	LastPlayed  *time.Time
}

// NewPlayerState returns the state of a player that has not played yet.
func NewPlayerState(initialRating float64) *PlayerState {
	return &PlayerState{Rating: initialRating}
}

// WinRate returns the percentage of games won, or 0 when no games were played.
func (p PlayerState) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return 100 * float64(p.Wins) / float64(p.GamesPlayed)
}
