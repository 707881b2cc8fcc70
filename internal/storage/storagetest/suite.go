// Package storagetest is a conformance suite shared by the storage
// backend tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
)

// Factory returns an initialized, empty provider. It should register its
// own cleanup.
type Factory func(t *testing.T) storage.Provider

var epoch = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// Run exercises every Repository operation against providers built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Duos", func(t *testing.T) { testDuos(t, newStore(t)) })
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStore(t)) })
	t.Run("HabitTitleUnique", func(t *testing.T) { testHabitTitleUnique(t, newStore(t)) })
	t.Run("Trees", func(t *testing.T) { testTrees(t, newStore(t)) })
	t.Run("GrowthLogWindow", func(t *testing.T) { testGrowthLogWindow(t, newStore(t)) })
	t.Run("TreeItems", func(t *testing.T) { testTreeItems(t, newStore(t)) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
}

func tx(t *testing.T, p storage.Provider, fn func(ctx context.Context, r storage.Repository) error) error {
	t.Helper()
	ctx := context.Background()
	return p.WithTx(ctx, func(r storage.Repository) error { return fn(ctx, r) })
}

func newDuo(id string) models.Duo {
	return models.Duo{ID: id, User1: id + "-alice", User2: id + "-bob", CreatedAt: epoch}
}

func seedDuo(t *testing.T, p storage.Provider, id string) models.Duo {
	t.Helper()
	d := newDuo(id)
	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		return r.AddDuo(ctx, d)
	}))
	return d
}

func testDuos(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-1")

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetDuo(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.User1, got.User1)
		assert.Equal(t, d.User2, got.User2)
		assert.Zero(t, got.Streak)
		assert.Empty(t, got.LastCompletionDay)
		assert.True(t, d.CreatedAt.Equal(got.CreatedAt))

		got.Streak = 4
		got.TrustScore = 120
		got.LastCompletionDay = "2026-03-02"
		got.ProtectionWeek = "2026-W10"
		return r.UpdateDuo(ctx, got)
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetDuo(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Streak)
		assert.Equal(t, 120, got.TrustScore)
		assert.Equal(t, "2026-03-02", got.LastCompletionDay)
		assert.Equal(t, "2026-W10", got.ProtectionWeek)

		duos, err := r.ListDuos(ctx)
		require.NoError(t, err)
		assert.Len(t, duos, 1)

		_, err = r.GetDuo(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		err = r.UpdateDuo(ctx, newDuo("missing"))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	}))
}

func testHabits(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-h")
	checkin := epoch.Add(90 * time.Minute).Truncate(time.Millisecond)

	h := models.Habit{
		ID:        "habit-1",
		DuoID:     d.ID,
		Title:     "Morning Walk",
		TitleKey:  "morning walk",
		Frequency: constants.FrequencyDaily,
		CreatedAt: epoch,
		UpdatedAt: epoch,
	}
	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		return r.AddHabit(ctx, h)
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetHabit(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, h.Title, got.Title)
		assert.Equal(t, constants.FrequencyDaily, got.Frequency)
		assert.Nil(t, got.LastCheckinA)
		assert.Nil(t, got.LastCheckinB)

		got.SetCheckin(true, checkin)
		got.UpdatedAt = checkin
		return r.UpdateHabit(ctx, got)
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetHabit(ctx, h.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastCheckinA)
		assert.True(t, checkin.Equal(*got.LastCheckinA))
		assert.Nil(t, got.LastCheckinB)

		list, err := r.ListHabitsForDuo(ctx, d.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = r.ListHabitsForDuo(ctx, "other-duo")
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = r.GetHabit(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		missing := h
		missing.ID = "missing"
		assert.ErrorIs(t, r.UpdateHabit(ctx, missing), apperrors.ErrNotFound)
		return nil
	}))
}

func testHabitTitleUnique(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-u")
	h := models.Habit{
		ID: "habit-a", DuoID: d.ID, Title: "Read", TitleKey: "read",
		Frequency: constants.FrequencyWeekly, CreatedAt: epoch, UpdatedAt: epoch,
	}
	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		return r.AddHabit(ctx, h)
	}))

	dup := h
	dup.ID = "habit-b"
	dup.Title = "READ"
	err := tx(t, p, func(ctx context.Context, r storage.Repository) error {
		return r.AddHabit(ctx, dup)
	})
	assert.Error(t, err, "title keys must be unique within a duo")
}

func testTrees(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-t")
	tree := models.Tree{
		ID:        "tree-1",
		DuoID:     d.ID,
		Stage:     constants.StageSapling,
		Inventory: map[string]int{},
		GrowthLog: []models.GrowthEntry{{At: epoch, Kind: constants.GrowthStage, Message: "planted"}},
	}
	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		return r.AddTree(ctx, tree)
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetTree(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StageSapling, got.Stage)
		assert.Empty(t, got.Decorations)
		require.Len(t, got.GrowthLog, 1)
		assert.Equal(t, "planted", got.GrowthLog[0].Message)

		got.Stage = constants.StageYoung
		got.Leaves = 3
		got.Fruits = 1
		got.Inventory["oak-leaf"] = 2
		got.Decorations = append(got.Decorations, models.Decoration{
			ItemID:     "oak-leaf",
			Position:   models.Position{X: 10, Y: 20.5},
			EquippedAt: epoch,
		})
		if err := r.UpdateTree(ctx, got); err != nil {
			return err
		}
		return r.AppendGrowthLog(ctx, got.ID, models.GrowthEntry{
			At: epoch.Add(time.Hour), Kind: constants.GrowthDecoration, Message: "equipped oak-leaf",
		})
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetTree(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, constants.StageYoung, got.Stage)
		assert.Equal(t, 3, got.Leaves)
		assert.Equal(t, 1, got.Fruits)
		assert.Equal(t, 2, got.Inventory["oak-leaf"])
		require.Len(t, got.Decorations, 1)
		assert.Equal(t, models.Position{X: 10, Y: 20.5}, got.Decorations[0].Position)
		require.Len(t, got.GrowthLog, 2)
		assert.Equal(t, constants.GrowthDecoration, got.GrowthLog[1].Kind)

		_, err = r.GetTree(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		return nil
	}))
}

func testGrowthLogWindow(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-g")
	tree := models.Tree{ID: "tree-g", DuoID: d.ID, Stage: constants.StageSapling, Inventory: map[string]int{}}
	total := storage.GrowthLogWindow + 5

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		if err := r.AddTree(ctx, tree); err != nil {
			return err
		}
		for i := 0; i < total; i++ {
			e := models.GrowthEntry{At: epoch.Add(time.Duration(i) * time.Minute), Kind: constants.GrowthCheckin, Message: fmt.Sprintf("entry %d", i)}
			if err := r.AppendGrowthLog(ctx, tree.ID, e); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetTree(ctx, d.ID)
		require.NoError(t, err)
		require.Len(t, got.GrowthLog, storage.GrowthLogWindow)
		assert.Equal(t, "entry 5", got.GrowthLog[0].Message)
		assert.Equal(t, fmt.Sprintf("entry %d", total-1), got.GrowthLog[len(got.GrowthLog)-1].Message)

		all, err := r.GetGrowthLog(ctx, tree.ID, total*2)
		require.NoError(t, err)
		assert.Len(t, all, total)

		all, err = r.GetGrowthLog(ctx, tree.ID, -1)
		require.NoError(t, err)
		require.Len(t, all, total)
		assert.Equal(t, "entry 0", all[0].Message)
		return nil
	}))
}

func testTreeItems(t *testing.T, p storage.Provider) {
	items := []models.TreeItem{
		{ItemID: "b-item", Name: "B", Category: constants.CategoryLeaf, Rarity: constants.RarityCommon, Buffs: models.Buffs{XPMultiplier: 1.1}, IsActive: true},
		{ItemID: "a-item", Name: "A", Category: constants.CategoryFruit, Rarity: constants.RarityRare, Buffs: models.Buffs{StreakProtection: true, DailyXPBonus: 5}, IsActive: true},
		{ItemID: "c-item", Name: "C", Category: constants.CategoryLeaf, Rarity: constants.RarityEpic, IsActive: false},
	}

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		n, err := r.CountTreeItems(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		for _, it := range items {
			if err := r.AddTreeItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		n, err := r.CountTreeItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		active, err := r.ListTreeItems(ctx, false)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "a-item", active[0].ItemID, "items are ordered by id")
		assert.True(t, active[0].Buffs.StreakProtection)
		assert.Equal(t, 5, active[0].Buffs.DailyXPBonus)

		all, err := r.ListTreeItems(ctx, true)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		it, err := r.GetTreeItem(ctx, "b-item")
		require.NoError(t, err)
		assert.InDelta(t, 1.1, it.Buffs.XPMultiplier, 1e-9)

		it.IsActive = false
		require.NoError(t, r.UpdateTreeItem(ctx, it))

		_, err = r.GetTreeItem(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, r.UpdateTreeItem(ctx, models.TreeItem{ItemID: "missing"}), apperrors.ErrNotFound)
		return nil
	}))

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		active, err := r.ListTreeItems(ctx, false)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		return nil
	}))
}

func testRollback(t *testing.T, p storage.Provider) {
	d := seedDuo(t, p, "duo-r")
	boom := errors.New("boom")

	err := tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetDuo(ctx, d.ID)
		if err != nil {
			return err
		}
		got.Streak = 99
		if err := r.UpdateDuo(ctx, got); err != nil {
			return err
		}
		if err := r.AddTreeItem(ctx, models.TreeItem{ItemID: "ghost", Name: "Ghost", Category: constants.CategoryLeaf, Rarity: constants.RarityCommon, IsActive: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, tx(t, p, func(ctx context.Context, r storage.Repository) error {
		got, err := r.GetDuo(ctx, d.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Streak, "failed transaction must not persist writes")

		n, err := r.CountTreeItems(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}
