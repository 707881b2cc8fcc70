// Package progression is the habit progression engine: check-ins,
// streaks, reward rolls and tree growth for a duo. Every operation runs
// in a single storage transaction.
package progression

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tandrum/tandrum/internal/clock"
	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/utils"
)

// Engine holds no state of its own beyond its collaborators
type Engine struct {
	store storage.Provider
	clock clock.Clock
	rng   Rand
	loc   *time.Location
	newID func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRand sets the random source for reward rolls. The engine serializes
// access to it.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = &lockedRand{r: r} }
}

// WithSeed uses a PCG source seeded with seed, for reproducible rolls.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithLocation sets the time zone that decides day and week boundaries.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithIDs replaces the uuid generator.
func WithIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an engine over store.
func New(store storage.Provider, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		clock: clock.Real(),
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) now() time.Time {
	return e.clock.Now()
}

func (e *Engine) today(now time.Time) string {
	return utils.DayKey(now, e.loc)
}

func (e *Engine) tx(ctx context.Context, fn func(storage.Repository) error) error {
	return e.store.WithTx(ctx, fn)
}

// catalogIndex loads every item, active or not, keyed by id.
func catalogIndex(ctx context.Context, r storage.Repository) (map[string]models.TreeItem, error) {
	items, err := r.ListTreeItems(ctx, true)
	if err != nil {
		return nil, err
	}
	index := make(map[string]models.TreeItem, len(items))
	for _, it := range items {
		index[it.ItemID] = it
	}
	return index, nil
}

// syncStage moves tree forward to the stage the trust score implies and
// returns the growth entry to record, or nil when nothing changed.
func syncStage(tree *models.Tree, trustScore int, now time.Time) *models.GrowthEntry {
	next := EffectiveStage(tree.Stage, StageForScore(trustScore))
	if next == tree.Stage {
		return nil
	}
	prev := tree.Stage
	tree.Stage = next
	return &models.GrowthEntry{
		At:      now,
		Kind:    constants.GrowthStage,
		Message: "Grew from " + string(prev) + " to " + string(next),
	}
}

type lockedRand struct {
	mu sync.Mutex
	r  Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
