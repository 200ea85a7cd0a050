package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"slot-game-backend/internal/features/game/models"
)

// Engine draws weighted spin outcomes. The prize table keeps its declared
// order: the cumulative walk gives earlier prizes a deterministic tie-break
// boundary, so order must survive config reloads unchanged.
type Engine struct {
	stats  *Stats
	prizes []models.Prize
	cfg    Config

	// losing reels draw from the glyphs no prize uses
	loseSymbols []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates a spin engine seeded from the wall clock.
func NewEngine(stats *Stats, prizes []models.Prize, cfg Config) *Engine {
	return NewEngineWithRand(stats, prizes, cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithRand creates a spin engine with an injected random source,
// used by tests that need deterministic draws.
func NewEngineWithRand(stats *Stats, prizes []models.Prize, cfg Config, rng *rand.Rand) *Engine {
	used := make(map[string]struct{}, len(prizes))
	for _, p := range prizes {
		used[p.Symbol] = struct{}{}
	}
	var lose []string
	for _, s := range models.SlotSymbols {
		if _, ok := used[s]; !ok {
			lose = append(lose, s)
		}
	}
	return &Engine{stats: stats, prizes: prizes, cfg: cfg.withDefaults(), loseSymbols: lose, rng: rng}
}

// Spin executes one draw. Every spin counts toward the stats window before
// the draw; awards are recorded after. The spin always terminates with a
// definite outcome.
func (e *Engine) Spin(ctx context.Context, now time.Time) (models.SpinOutcome, error) {
	if err := e.stats.RecordSpin(ctx, now); err != nil {
		return models.SpinOutcome{}, err
	}

	stats, err := e.stats.Snapshot(ctx, now)
	if err != nil {
		return models.SpinOutcome{}, err
	}
	adjusted := AdjustedProbabilities(stats, e.prizes, e.cfg.MinSpinsForAdjust)

	e.mu.Lock()
	r := e.rng.Float64() * 100
	var cumulative float64
	for i := range e.prizes {
		cumulative += adjusted[e.prizes[i].Name]
		if r < cumulative {
			prize := e.prizes[i]
			e.mu.Unlock()
			if err := e.stats.RecordAward(ctx, prize.Name, now); err != nil {
				return models.SpinOutcome{}, err
			}
			return models.SpinOutcome{
				Prize:   &prize,
				Symbols: [3]string{prize.Symbol, prize.Symbol, prize.Symbol},
			}, nil
		}
	}

	symbols := e.drawLosingSymbols()
	e.mu.Unlock()
	return models.SpinOutcome{Symbols: symbols}, nil
}

// drawLosingSymbols picks three glyphs outside the prize set, re-drawing
// the whole triple whenever it comes out identical so a losing spin never
// looks like a match. Caller holds e.mu.
func (e *Engine) drawLosingSymbols() [3]string {
	pool := e.loseSymbols
	if len(pool) < 2 {
		// a table built around NewEngineWithRand may claim nearly every
		// glyph; draw from the full reel so the spin still terminates,
		// the re-roll below keeps the triple from matching
		pool = models.SlotSymbols
	}
	var s [3]string
	for {
		for i := range s {
			s[i] = pool[e.rng.Intn(len(pool))]
		}
		if s[0] != s[1] || s[1] != s[2] {
			return s
		}
	}
}
