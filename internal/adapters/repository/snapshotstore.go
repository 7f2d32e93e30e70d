package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/elorank/internal/domain/rating"
	"github.com/okian/elorank/pkg/metrics"
)

// Snapshot is an immutable view of one published ranking.
type Snapshot struct {
	Table       rating.Table
	RankByName  map[string]int // 0-based index into Table
	PublishedAt time.Time
}

// SnapshotStore serves reads from an atomically swapped Snapshot. Writers
// build a complete snapshot before publishing it, so readers never observe a
// partially built table.
type SnapshotStore struct {
	maxLimit int
	snapshot atomic.Pointer[Snapshot]
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{maxLimit: 1000}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish implements Store.Publish. The table is copied; callers may reuse it.
func (s *SnapshotStore) Publish(_ context.Context, table rating.Table) {
	rows := make(rating.Table, len(table))
	copy(rows, table)

	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[r.Player] = i
	}

	s.snapshot.Store(&Snapshot{
		Table:       rows,
		RankByName:  index,
		PublishedAt: time.Now(),
	})
	metrics.IncrementSnapshotsPublished()
}

// Current returns the latest snapshot, or nil before the first publish.
func (s *SnapshotStore) Current() *Snapshot {
	return s.snapshot.Load()
}

// Rank implements Store.Rank in O(1).
func (s *SnapshotStore) Rank(_ context.Context, player string) (rating.Row, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	snap := s.snapshot.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "no_snapshot")
		return rating.Row{}, ErrNoSnapshot
	}
	i, ok := snap.RankByName[player]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return rating.Row{}, ErrNotFound
	}
	return snap.Table[i], nil
}

// TopN implements Store.TopN. n is capped at the configured maximum.
func (s *SnapshotStore) TopN(_ context.Context, n int) ([]rating.Row, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	snap := s.snapshot.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "no_snapshot")
		return nil, ErrNoSnapshot
	}
	n = min(n, s.maxLimit, len(snap.Table))
	out := make([]rating.Row, n)
	copy(out, snap.Table[:n])
	return out, nil
}

// Count implements Store.Count.
func (s *SnapshotStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Table)
}
