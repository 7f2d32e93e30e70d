// Package repository holds the latest published ranking table for reads.
package repository

import (
	"context"

	"github.com/okian/elorank/internal/domain/rating"
)

// Store provides read access to the published ranking plus the publish hook
// used by the service after each successful run.
type Store interface {
	// Publish replaces the current ranking with table.
	Publish(ctx context.Context, table rating.Table)

	// Rank returns the row for a player.
	// Returns ErrNotFound if the player is unknown and ErrNoSnapshot before
	// the first publish.
	Rank(ctx context.Context, player string) (rating.Row, error)

	// TopN returns the first n rows in rank order.
	TopN(ctx context.Context, n int) ([]rating.Row, error)

	// Count returns the number of players in the published ranking.
	Count(ctx context.Context) int
}
