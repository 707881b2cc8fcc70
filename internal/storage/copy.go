package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tandrum/tandrum/internal/models"
)

// CopyStats counts the records Copy wrote
type CopyStats struct {
	Duos       int
	Habits     int
	Trees      int
	GrowthLogs int
	Items      int
}

// ErrDestinationNotEmpty is returned by Copy when dst already holds data.
var ErrDestinationNotEmpty = errors.New("destination database is not empty")

type snapshot struct {
	items  []models.TreeItem
	duos   []models.Duo
	habits []models.Habit
	trees  []models.Tree
}

// Copy moves every record from src into an empty dst. The source is read
// in one transaction and the destination written in another, so a failed
// copy leaves dst untouched.
func Copy(ctx context.Context, src, dst Provider) (CopyStats, error) {
	var snap snapshot
	err := src.WithTx(ctx, func(r Repository) error {
		var err error
		if snap.items, err = r.ListTreeItems(ctx, true); err != nil {
			return err
		}
		if snap.duos, err = r.ListDuos(ctx); err != nil {
			return err
		}
		for _, d := range snap.duos {
			habits, err := r.ListHabitsForDuo(ctx, d.ID)
			if err != nil {
				return err
			}
			snap.habits = append(snap.habits, habits...)

			tree, err := r.GetTree(ctx, d.ID)
			if err != nil {
				return err
			}
			if tree.GrowthLog, err = r.GetGrowthLog(ctx, tree.ID, -1); err != nil {
				return err
			}
			snap.trees = append(snap.trees, tree)
		}
		return nil
	})
	if err != nil {
		return CopyStats{}, fmt.Errorf("failed to read source: %w", err)
	}

	var stats CopyStats
	err = dst.WithTx(ctx, func(r Repository) error {
		n, err := r.CountTreeItems(ctx)
		if err != nil {
			return err
		}
		duos, err := r.ListDuos(ctx)
		if err != nil {
			return err
		}
		if n > 0 || len(duos) > 0 {
			return ErrDestinationNotEmpty
		}

		for _, it := range snap.items {
			if err := r.AddTreeItem(ctx, it); err != nil {
				return err
			}
			stats.Items++
		}
		for _, d := range snap.duos {
			if err := r.AddDuo(ctx, d); err != nil {
				return err
			}
			stats.Duos++
		}
		for _, t := range snap.trees {
			if err := r.AddTree(ctx, t); err != nil {
				return err
			}
			stats.Trees++
			stats.GrowthLogs += len(t.GrowthLog)
		}
		for _, h := range snap.habits {
			if err := r.AddHabit(ctx, h); err != nil {
				return err
			}
			stats.Habits++
		}
		return nil
	})
	if err != nil {
		return CopyStats{}, err
	}
	return stats, nil
}
