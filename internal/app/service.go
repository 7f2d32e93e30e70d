// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/elorank/internal/adapters/repository"
	"github.com/okian/elorank/internal/adapters/storage"
	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/internal/domain/rating"
	"github.com/okian/elorank/internal/domain/types"
	"github.com/okian/elorank/pkg/logger"
	"github.com/okian/elorank/pkg/metrics"
)

// Run outcome labels used in stats and metrics.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RunStats summarises one read, compute, write and publish cycle.
type RunStats struct {
	RunID     string        `json:"run_id"`
	Status    string        `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Matches   int           `json:"matches"`
	Players   int           `json:"players"`
	Error     string        `json:"error,omitempty"`
}

// Service runs the rating pipeline and serves the published ranking.
type Service struct {
	runMu sync.Mutex   // serialises runs
	mu    sync.RWMutex // guards the fields below

	source     storage.Source
	sink       storage.Sink
	sourceName string
	sinkName   string
	ratingOpts []rating.Option
	store      repository.Store

	started  bool
	runs     int
	failures int
	lastRun  *RunStats

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource sets the match log reader. name labels metrics and logs.
func WithSource(name string, src storage.Source) Option {
	return func(s *Service) {
		s.source = src
		s.sourceName = name
	}
}

// WithSink sets the ranking writer. Without a sink, runs only publish to the
// in-memory store.
func WithSink(name string, sink storage.Sink) Option {
	return func(s *Service) {
		s.sink = sink
		s.sinkName = name
	}
}

// WithRatingOptions passes engine options to every run.
func WithRatingOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.ratingOpts = append(s.ratingOpts, opts...)
	}
}

// WithStore sets the store rankings are published to.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sourceName: "unknown",
		sinkName:   "none",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	return s
}

// Start prepares the service for runs and queries.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.String("source", s.sourceName),
		logger.String("sink", s.sinkName),
	)
	return nil
}

// Stop marks the service stopped. A run in progress completes first.
func (s *Service) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "rating service stopped")
}

// Run reads the match log, rates it in order, writes the ranking to the sink
// and publishes it for queries. Any failure aborts the run and leaves the
// previously published ranking in place.
func (s *Service) Run(ctx context.Context) (RunStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return RunStats{}, ErrNotStarted
	}

	stats := RunStats{RunID: uuid.NewString(), StartedAt: time.Now()}
	runID := logger.String("run_id", stats.RunID)
	s.logger.Info(ctx, "run started", runID, logger.String("source", s.sourceName))

	table, matches, err := s.run(ctx, runID)
	stats.Duration = time.Since(stats.StartedAt)
	stats.Matches = matches
	stats.Players = len(table)
	durationMs := float64(stats.Duration.Milliseconds())

	if err != nil {
		stats.Status = StatusFailed
		stats.Error = err.Error()
		metrics.RecordRun(StatusFailed, durationMs)
		s.logger.Error(ctx, "run failed", runID, logger.Error(err))
		s.record(stats)
		return stats, err
	}

	stats.Status = StatusOK
	metrics.RecordRun(StatusOK, durationMs)
	metrics.UpdateLastRun(float64(stats.StartedAt.Unix()), matches)
	metrics.UpdatePlayersTotal(stats.Players)
	s.logger.Info(ctx, "run completed", runID,
		logger.Int("matches", stats.Matches),
		logger.Int("players", stats.Players),
		logger.Duration("duration", stats.Duration),
	)
	s.record(stats)
	return stats, nil
}

// Recompute runs the pipeline on demand. It is Run under the name the HTTP
// API exposes.
func (s *Service) Recompute(ctx context.Context) (RunStats, error) {
	return s.Run(ctx)
}

func (s *Service) run(ctx context.Context, runID logger.Field) (rating.Table, int, error) {
	matches, err := s.read(ctx)
	if err != nil {
		return nil, 0, err
	}

	table, err := s.compute(ctx, matches, runID)
	if err != nil {
		return nil, len(matches), err
	}

	if err := s.write(ctx, table); err != nil {
		return nil, len(matches), err
	}

	s.store.Publish(ctx, table)
	return table, len(matches), nil
}

func (s *Service) read(ctx context.Context) ([]model.MatchRecord, error) {
	start := time.Now()
	matches, err := s.source.ReadMatches(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("source", s.sourceName)
		return nil, fmt.Errorf("read matches from %s: %w", s.sourceName, err)
	}
	metrics.RecordSourceRead(s.sourceName, len(matches), float64(time.Since(start).Milliseconds()))
	return matches, nil
}

func (s *Service) compute(ctx context.Context, matches []model.MatchRecord, runID logger.Field) (rating.Table, error) {
	ledger := rating.NewLedger(s.ratingOpts...)
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compute rankings: %w", err)
		}
		u, err := ledger.Apply(m)
		if err != nil {
			metrics.RecordInvalidRecord()
			metrics.RecordErrorByComponent("engine", "invalid_record")
			return nil, fmt.Errorf("compute rankings: %w", err)
		}
		metrics.RecordMatchProcessed(math.Abs(u.DeltaA))
		s.logger.Debug(ctx, "match rated", runID,
			logger.Int("index", u.Index),
			logger.String("player_a", u.PlayerA),
			logger.String("player_b", u.PlayerB),
			logger.String("winner", m.Winner()),
			logger.String("loser", m.Loser()),
			logger.Float64("k", u.KCombined),
			logger.Float64("expected_a", u.ExpectedA),
			logger.Float64("delta_a", u.DeltaA),
		)
	}
	return ledger.Table(), nil
}

func (s *Service) write(ctx context.Context, table rating.Table) error {
	if s.sink == nil {
		return nil
	}
	start := time.Now()
	if err := s.sink.WriteRankings(ctx, table); err != nil {
		metrics.RecordErrorByComponent("sink", s.sinkName)
		return fmt.Errorf("write rankings to %s: %w", s.sinkName, err)
	}
	metrics.RecordSinkWrite(s.sinkName, len(table), float64(time.Since(start).Milliseconds()))
	return nil
}

func (s *Service) record(stats RunStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	if stats.Status == StatusFailed {
		s.failures++
	}
	s.lastRun = &stats
}

// LastRun returns the stats of the most recent run, if any.
func (s *Service) LastRun() (RunStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return RunStats{}, false
	}
	return *s.lastRun, true
}

// TopN returns the top N ranking entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	rows, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.FromRows(rows), nil
}

// Rank returns the ranking entry for a given player.
func (s *Service) Rank(ctx context.Context, player string) (types.Entry, error) {
	row, err := s.store.Rank(ctx, player)
	if err != nil {
		return types.Entry{}, err
	}
	return types.FromRow(row), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"source":       s.sourceName,
		"sink":         s.sinkName,
		"runs":         s.runs,
		"failedRuns":   s.failures,
		"totalPlayers": s.store.Count(context.Background()),
	}
	if s.lastRun != nil {
		stats["lastRun"] = *s.lastRun
	}
	return stats
}
