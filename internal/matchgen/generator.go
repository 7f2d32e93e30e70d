// Package matchgen produces synthetic match logs for exercising the rating
// pipeline. Logs are reproducible for a given seed.
package matchgen

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/elorank/internal/domain/model"
	"github.com/okian/elorank/pkg/logger"
)

// Hidden strength tiers players are drawn from. Outcomes follow the logistic
// curve on the strength gap, so stronger players tend to win.
const (
	strengthBase   = 1000.0
	strengthSpread = 400.0
	tierCount      = 4
	tierWidth      = 150.0
	matchInterval  = time.Hour
)

// Player is a generated participant with its hidden strength.
type Player struct {
	ID       string
	Strength float64
}

// Generator builds match logs from a seeded random source.
type Generator struct {
	rng     *rand.Rand
	players []Player
	cfg     Config
}

// New creates a Generator and draws its players.
func New(cfg Config) (*Generator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	g := &Generator{
		rng: rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // reproducible test data, not security sensitive
		cfg: cfg,
	}
	g.players = make([]Player, cfg.Players)
	for i := range g.players {
		id, err := g.playerID(i)
		if err != nil {
			return nil, err
		}
		tier := float64(g.rng.Intn(tierCount))
		g.players[i] = Player{
			ID:       id,
			Strength: strengthBase + (tier-1.5)*tierWidth + g.rng.NormFloat64()*tierWidth/3,
		}
	}
	return g, nil
}

func (g *Generator) playerID(i int) (string, error) {
	if !g.cfg.UUIDs {
		return "player_" + strconv.Itoa(i+1), nil
	}
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return "", fmt.Errorf("generate player id: %w", err)
	}
	return id.String(), nil
}

// Players returns the generated players.
func (g *Generator) Players() []Player {
	out := make([]Player, len(g.players))
	copy(out, g.players)
	return out
}

// Generate draws the configured number of matches between distinct players.
func (g *Generator) Generate(ctx context.Context) ([]model.MatchRecord, error) {
	matches := make([]model.MatchRecord, 0, g.cfg.Matches)
	for i := 0; i < g.cfg.Matches; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled after %d matches: %w", i, err)
		}
		matches = append(matches, g.match(i))
	}
	logger.Get().Debug(ctx, "generated matches",
		logger.Int("players", len(g.players)),
		logger.Int("matches", len(matches)),
	)
	return matches, nil
}

func (g *Generator) match(i int) model.MatchRecord {
	a := g.rng.Intn(len(g.players))
	b := g.rng.Intn(len(g.players) - 1)
	if b >= a {
		b++
	}
	pa, pb := g.players[a], g.players[b]

	m := model.MatchRecord{PlayerA: pa.ID, PlayerB: pb.ID}
	if g.rng.Float64() < winProbability(pa.Strength, pb.Strength) {
		m.ResultA = 1
	} else {
		m.ResultB = 1
	}
	if g.cfg.Dates {
		ts := g.cfg.Start.Add(time.Duration(i) * matchInterval)
		m.Date = &ts
	}
	return m
}

func winProbability(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/strengthSpread))
}
