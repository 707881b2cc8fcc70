package progression

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/clock"
	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/memory"
)

// Monday of ISO week 2026-W10
var monday = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

var testItems = []models.TreeItem{
	{ItemID: "apple", Name: "Apple", Category: constants.CategoryFruit, Rarity: constants.RarityCommon, Buffs: models.Buffs{DailyXPBonus: 5}, IsActive: true},
	{ItemID: "oak-leaf", Name: "Oak Leaf", Category: constants.CategoryLeaf, Rarity: constants.RarityCommon, Buffs: models.Buffs{XPMultiplier: 1.5}, IsActive: true},
	{ItemID: "shield-leaf", Name: "Shield Leaf", Category: constants.CategoryLeaf, Rarity: constants.RarityUncommon, Buffs: models.Buffs{StreakProtection: true, FocusBonus: 10}, IsActive: true},
	{ItemID: "star-fruit", Name: "Star Fruit", Category: constants.CategoryFruit, Rarity: constants.RarityLegendary, IsActive: true},
	{ItemID: "old-leaf", Name: "Old Leaf", Category: constants.CategoryLeaf, Rarity: constants.RarityCommon, IsActive: false},
}

// scriptedRand replays fixed draws. Once exhausted Float64 returns a
// value above the drop chance so nothing else drops.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (s *scriptedRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return 0.999
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *scriptedRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func noDrops() *scriptedRand { return &scriptedRand{} }

type fixture struct {
	ctx    context.Context
	engine *Engine
	store  storage.Provider
	clock  *clock.FakeClock
	rng    *scriptedRand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewStore())
}

func newFixtureWithStore(t *testing.T, store storage.Provider) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: store,
		clock: clock.Fake(monday),
		rng:   noDrops(),
	}
	n := 0
	var mu sync.Mutex
	f.engine = New(store,
		WithClock(f.clock),
		WithRand(f.rng),
		WithLocation(time.UTC),
		WithIDs(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%03d", n)
		}),
	)
	_, err := f.engine.SeedItems(f.ctx, testItems)
	require.NoError(t, err)
	return f
}

func (f *fixture) duo(t *testing.T) models.Duo {
	t.Helper()
	duo, _, err := f.engine.CreateDuo(f.ctx, "alice", "bob")
	require.NoError(t, err)
	return duo
}

func (f *fixture) habit(t *testing.T, duoID, title string, freq constants.Frequency) models.Habit {
	t.Helper()
	h, err := f.engine.CreateHabit(f.ctx, duoID, title, freq)
	require.NoError(t, err)
	return h
}

// completeBoth checks in both users and returns the second result.
func (f *fixture) completeBoth(t *testing.T, habitID string) CheckInResult {
	t.Helper()
	_, err := f.engine.CheckIn(f.ctx, habitID, true)
	require.NoError(t, err)
	res, err := f.engine.CheckIn(f.ctx, habitID, false)
	require.NoError(t, err)
	return res
}

func (f *fixture) giveItem(t *testing.T, duoID, itemID string, n int) {
	t.Helper()
	require.NoError(t, f.store.WithTx(f.ctx, func(r storage.Repository) error {
		tree, err := r.GetTree(f.ctx, duoID)
		if err != nil {
			return err
		}
		tree.Inventory[itemID] += n
		return r.UpdateTree(f.ctx, tree)
	}))
}

func (f *fixture) tree(t *testing.T, duoID string) models.Tree {
	t.Helper()
	var tree models.Tree
	require.NoError(t, f.store.WithTx(f.ctx, func(r storage.Repository) error {
		var err error
		tree, err = r.GetTree(f.ctx, duoID)
		return err
	}))
	return tree
}

func (f *fixture) getDuo(t *testing.T, duoID string) models.Duo {
	t.Helper()
	var duo models.Duo
	require.NoError(t, f.store.WithTx(f.ctx, func(r storage.Repository) error {
		var err error
		duo, err = r.GetDuo(f.ctx, duoID)
		return err
	}))
	return duo
}

// growTo raises the duo's trust score so its tree reaches stage.
func (f *fixture) growTo(t *testing.T, duoID string, score int) {
	t.Helper()
	duo := f.getDuo(t, duoID)
	_, err := f.engine.AdjustTrustScore(f.ctx, duoID, score-duo.TrustScore, "test setup")
	require.NoError(t, err)
}
