package progression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
)

func TestEquipDecoration(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)
	f.growTo(t, duo.ID, 500)
	f.giveItem(t, duo.ID, "oak-leaf", 3)

	tree, err := f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 10, Y: 10})
	require.NoError(t, err)
	require.Len(t, tree.Decorations, 1)
	assert.Equal(t, "oak-leaf", tree.Decorations[0].ItemID)
	assert.True(t, monday.Equal(tree.Decorations[0].EquippedAt))

	stored := f.tree(t, duo.ID)
	assert.Len(t, stored.Decorations, 1)
	assert.Equal(t, constants.GrowthDecoration, stored.GrowthLog[len(stored.GrowthLog)-1].Kind)
}

func TestEquipDecorationFailuresWriteNothing(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)
	f.giveItem(t, duo.ID, "oak-leaf", 5)
	f.giveItem(t, duo.ID, "old-leaf", 1)

	// tree-1 holds nothing
	_, err := f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 0, Y: 0})
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	f.growTo(t, duo.ID, 500)
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 0, Y: 0})
	require.NoError(t, err)
	before := f.tree(t, duo.ID)

	tests := []struct {
		name   string
		itemID string
		pos    models.Position
		want   error
	}{
		{"unknown item", "nope", models.Position{X: 200, Y: 200}, apperrors.ErrNotFound},
		{"inactive item", "old-leaf", models.Position{X: 200, Y: 200}, apperrors.ErrNotFound},
		{"not owned", "apple", models.Position{X: 200, Y: 200}, apperrors.ErrValidation},
		{"overlapping slot", "oak-leaf", models.Position{X: 10, Y: 10}, apperrors.ErrSlotOccupied},
		{"just inside tolerance", "oak-leaf", models.Position{X: constants.SlotTolerance - 0.01, Y: 0}, apperrors.ErrSlotOccupied},
		{"not finite", "oak-leaf", models.Position{X: math.NaN(), Y: 0}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.EquipDecoration(f.ctx, duo.ID, tt.itemID, tt.pos)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, f.tree(t, duo.ID), "failed equip must not write")
		})
	}

	// Exactly at the tolerance is free
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: constants.SlotTolerance, Y: 0})
	require.NoError(t, err)

	// tree-2 is now full
	before = f.tree(t, duo.ID)
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 500, Y: 500})
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
	assert.Equal(t, before, f.tree(t, duo.ID))
}

func TestEquipDecorationNeedsUnequippedCopy(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)
	f.growTo(t, duo.ID, 2000)
	f.giveItem(t, duo.ID, "oak-leaf", 1)

	_, err := f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 0, Y: 0})
	require.NoError(t, err)
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 100, Y: 100})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestEquipDecorationUnknownDuo(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.EquipDecoration(f.ctx, "missing", "oak-leaf", models.Position{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveDecoration(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)
	f.growTo(t, duo.ID, 500)
	f.giveItem(t, duo.ID, "oak-leaf", 2)

	_, err := f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 0, Y: 0})
	require.NoError(t, err)
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 50, Y: 0})
	require.NoError(t, err)

	for _, idx := range []int{-1, 2} {
		_, err = f.engine.RemoveDecoration(f.ctx, duo.ID, idx)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, "index %d", idx)
	}

	tree, err := f.engine.RemoveDecoration(f.ctx, duo.ID, 0)
	require.NoError(t, err)
	require.Len(t, tree.Decorations, 1)
	assert.Equal(t, models.Position{X: 50, Y: 0}, tree.Decorations[0].Position)
	assert.Equal(t, 2, tree.Inventory["oak-leaf"], "removing keeps the item")

	// The freed slot can be reused
	_, err = f.engine.EquipDecoration(f.ctx, duo.ID, "oak-leaf", models.Position{X: 0, Y: 0})
	require.NoError(t, err)
}

func TestSyncTreeStage(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)

	stage, err := f.engine.SyncTreeStage(f.ctx, duo.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StageSapling, stage)
	logLen := len(f.tree(t, duo.ID).GrowthLog)

	// Drift: raise the score behind the engine's back
	d := f.getDuo(t, duo.ID)
	d.TrustScore = 2000
	require.NoError(t, f.store.WithTx(f.ctx, func(r storage.Repository) error { return r.UpdateDuo(f.ctx, d) }))

	stage, err = f.engine.SyncTreeStage(f.ctx, duo.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StageMature, stage)
	assert.Len(t, f.tree(t, duo.ID).GrowthLog, logLen+1)

	// Idempotent
	stage, err = f.engine.SyncTreeStage(f.ctx, duo.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StageMature, stage)
	assert.Len(t, f.tree(t, duo.ID).GrowthLog, logLen+1)

	_, err = f.engine.SyncTreeStage(f.ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStageNeverRegressesAfterScoreDrop(t *testing.T) {
	f := newFixture(t)
	duo := f.duo(t)

	f.growTo(t, duo.ID, 3500)
	assert.Equal(t, constants.StageMature, f.tree(t, duo.ID).Stage)

	d, err := f.engine.AdjustTrustScore(f.ctx, duo.ID, -10_000, "penalty")
	require.NoError(t, err)
	assert.Zero(t, d.TrustScore, "score clamps at zero")

	stage, err := f.engine.SyncTreeStage(f.ctx, duo.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StageMature, stage)

	st, err := f.engine.DuoStatus(f.ctx, duo.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StageMature, st.Tree.Stage)
	assert.Equal(t, 4, st.Capacity)
	assert.Equal(t, 1, st.Level)
}
