package progression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/catalog"
	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage/memory"
)

func TestSeedCatalog(t *testing.T) {
	e := New(memory.NewStore())
	ctx := t.Context()

	n, err := e.SeedCatalog(ctx)
	require.NoError(t, err)
	builtIn, err := catalog.Default()
	require.NoError(t, err)
	assert.Equal(t, len(builtIn), n)

	_, err = e.SeedCatalog(ctx)
	assert.ErrorIs(t, err, ErrCatalogSeeded)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	all, err := e.ListItems(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, n, "a failed reseed adds nothing")
}

func TestSeedItemsRejectsInvalidItem(t *testing.T) {
	e := New(memory.NewStore())
	ctx := t.Context()

	_, err := e.SeedItems(ctx, []models.TreeItem{
		{ItemID: "ok", Name: "Ok", Category: constants.CategoryLeaf, Rarity: constants.RarityCommon, IsActive: true},
		{ItemID: "bad", Name: "Bad", Category: "twig", Rarity: constants.RarityCommon},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	items, err := e.ListItems(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)

	active, err := f.engine.ListActiveItems(f.ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4)

	item, err := f.engine.UpdateItem(f.ctx, "apple", ItemUpdate{
		Name:     ptr("Red Apple"),
		Buffs:    &models.Buffs{DailyXPBonus: 8},
		IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Red Apple", item.Name)
	assert.Equal(t, 8, item.Buffs.DailyXPBonus)
	assert.False(t, item.IsActive)

	active, err = f.engine.ListActiveItems(f.ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	got, err := f.engine.GetItem(f.ctx, "apple")
	require.NoError(t, err, "deactivated items are still retrievable")
	assert.Equal(t, "Red Apple", got.Name)

	_, err = f.engine.UpdateItem(f.ctx, "apple", ItemUpdate{Name: ptr("  ")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.engine.UpdateItem(f.ctx, "missing", ItemUpdate{IsActive: ptr(true)})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeactivatedItemStopsDropping(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)
	habit := f.habit(t, duo.ID, "Garden", constants.FrequencyDaily)

	_, err := f.engine.UpdateItem(f.ctx, "apple", ItemUpdate{IsActive: ptr(false)})
	require.NoError(t, err)

	f.rng.floats = []float64{0.1, 0.1}
	f.rng.ints = []int{0}
	res := f.completeBoth(t, habit.ID)
	require.NotNil(t, res.Rewards.Item)
	assert.Equal(t, "oak-leaf", res.Rewards.Item.ItemID)
	assert.Equal(t, 1, f.tree(t, duo.ID).Leaves)
}
