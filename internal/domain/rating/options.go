package rating

import "math"

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithInitialRating sets the rating given to a player the first time it is seen.
func WithInitialRating(r float64) Option {
	return func(l *Ledger) {
		if !math.IsNaN(r) && !math.IsInf(r, 0) {
			l.initialRating = r
		}
	}
}

// WithKRange sets the bounds of the K-factor schedule. New players move at
// kMax and experienced players converge towards kMin.
func WithKRange(kMin, kMax float64) Option {
	return func(l *Ledger) {
		if kMin > 0 && kMax >= kMin {
			l.kMin = kMin
			l.kMax = kMax
		}
	}
}
