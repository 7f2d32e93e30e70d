// Package rating implements the Elo rating engine: the K-factor schedule,
// the expected score model and the sequential update over a match log.
package rating

import (
	"fmt"
	"math"

	"github.com/okian/elorank/internal/domain/model"
)

// Default rating configuration constants.
const (
	InitialRating = 1000.0
	KMin          = 20.0
	KMax          = 40.0

	// A 400 point gap means the stronger player is expected to win ten times as often.
	ratingSpread = 400.0
)

// KFactor returns the learning rate for a player with n games played,
// using the default KMin/KMax bounds.
func KFactor(n int) float64 {
	return kFactor(KMin, KMax, n)
}

// kFactor decays from kMax at n=0 towards kMin as n grows.
func kFactor(kMin, kMax float64, n int) float64 {
	if n < 0 {
		n = 0
	}
	return kMin + (kMax-kMin)*(1/(math.Log(float64(n)+1)+1))
}

// ExpectedScore returns the probability that a player rated ratingA beats a
// player rated ratingB. The opponent's expected score is 1 minus this value.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/ratingSpread))
}

// Update describes the effect of one applied match.
type Update struct {
	Index     int // 0-based position in the input sequence
	PlayerA   string
	PlayerB   string
	KA        float64
	KB        float64
	KCombined float64
	ExpectedA float64
	ExpectedB float64
	DeltaA    float64
	DeltaB    float64
}

// Ledger holds player state for a single ranking pass. Matches must be applied
// in input order; a Ledger is not safe for concurrent use.
type Ledger struct {
	initialRating float64
	kMin          float64
	kMax          float64

	players map[string]*model.PlayerState
	order   []string // player ids in order of first appearance
	applied int
}

// NewLedger creates an empty ledger with configuration options.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		initialRating: InitialRating,
		kMin:          KMin,
		kMax:          KMax,
		players:       make(map[string]*model.PlayerState),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Apply rates one match against the current state of both players.
// An invalid record leaves the ledger untouched.
func (l *Ledger) Apply(m model.MatchRecord) (Update, error) {
	index := l.applied
	if err := validate(index, m); err != nil {
		return Update{}, err
	}

	a := l.player(m.PlayerA)
	b := l.player(m.PlayerB)

	ka := kFactor(l.kMin, l.kMax, a.GamesPlayed)
	kb := kFactor(l.kMin, l.kMax, b.GamesPlayed)
	k := (ka + kb) / 2

	ea := ExpectedScore(a.Rating, b.Rating)
	eb := 1 - ea

	// resultB-eb is -(resultA-ea) whenever the record is valid, so B's delta is
	// the negation of A's and the match conserves total rating.
	// When a player is listed on both sides, B's rating is assigned last.
	ra, rb := a.Rating, b.Rating
	delta := k * (float64(m.ResultA) - ea)
	a.Rating = ra + delta
	b.Rating = rb - delta

	a.GamesPlayed++
	b.GamesPlayed++
	if m.ResultA == 1 {
		a.Wins++
		b.Losses++
	} else {
		b.Wins++
		a.Losses++
	}
	if m.Date != nil {
		ts := *m.Date
		a.LastPlayed = &ts
		b.LastPlayed = &ts
	}

	l.applied++
	return Update{
		Index:     index,
		PlayerA:   m.PlayerA,
		PlayerB:   m.PlayerB,
		KA:        ka,
		KB:        kb,
		KCombined: k,
		ExpectedA: ea,
		ExpectedB: eb,
		DeltaA:    delta,
		DeltaB:    -delta,
	}, nil
}

// Player returns a copy of the current state of a player.
func (l *Ledger) Player(id string) (model.PlayerState, bool) {
	p, ok := l.players[id]
	if !ok {
		return model.PlayerState{}, false
	}
	return *p, true
}

// Len returns the number of distinct players seen so far.
func (l *Ledger) Len() int { return len(l.order) }

// Applied returns the number of matches applied so far.
func (l *Ledger) Applied() int { return l.applied }

func (l *Ledger) player(id string) *model.PlayerState {
	p, ok := l.players[id]
	if !ok {
		p = model.NewPlayerState(l.initialRating)
		l.players[id] = p
		l.order = append(l.order, id)
	}
	return p
}

func validate(index int, m model.MatchRecord) error {
	switch {
	case !isBinary(m.ResultA) || !isBinary(m.ResultB):
		return &InvalidRecordError{Index: index, Reason: fmt.Sprintf("results must be 0 or 1, got %d and %d", m.ResultA, m.ResultB)}
	case m.ResultA+m.ResultB != 1:
		return &InvalidRecordError{Index: index, Reason: fmt.Sprintf("exactly one player must win, got %d and %d", m.ResultA, m.ResultB)}
	}
	return nil
}

func isBinary(r int) bool { return r == 0 || r == 1 }

// ComputeRankings folds the match log, in order, into a ranking table.
// An empty log yields an empty table. The first invalid record aborts the
// computation and no table is returned.
func ComputeRankings(matches []model.MatchRecord, opts ...Option) (Table, error) {
	l := NewLedger(opts...)
	for _, m := range matches {
		if _, err := l.Apply(m); err != nil {
			return nil, err
		}
	}
	return l.Table(), nil
}
