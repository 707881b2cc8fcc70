package progression

import (
	"context"
	"fmt"
	"math"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/validation"
)

// SyncTreeStage corrects a tree whose stage lags behind the duo's trust
// score. It is idempotent and never moves a tree backwards.
func (e *Engine) SyncTreeStage(ctx context.Context, duoID string) (constants.Stage, error) {
	var stage constants.Stage
	err := e.tx(ctx, func(r storage.Repository) error {
		duo, err := r.GetDuo(ctx, duoID)
		if err != nil {
			return err
		}
		tree, err := r.GetTree(ctx, duoID)
		if err != nil {
			return err
		}

		entry := syncStage(&tree, duo.TrustScore, e.now())
		stage = tree.Stage
		if entry == nil {
			return nil
		}
		if err := r.UpdateTree(ctx, tree); err != nil {
			return err
		}
		logger.Info("Tree stage synced", "duo", duoID, "stage", stage)
		return r.AppendGrowthLog(ctx, tree.ID, *entry)
	})
	if err != nil {
		return "", err
	}
	return stage, nil
}

// EquipDecoration places an owned, unequipped copy of itemID on the tree.
// Nothing is written when any check fails.
func (e *Engine) EquipDecoration(ctx context.Context, duoID, itemID string, pos models.Position) (models.Tree, error) {
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) {
		return models.Tree{}, apperrors.Validation("position must be finite")
	}

	var tree models.Tree
	err := e.tx(ctx, func(r storage.Repository) error {
		duo, err := r.GetDuo(ctx, duoID)
		if err != nil {
			return err
		}
		tree, err = r.GetTree(ctx, duoID)
		if err != nil {
			return err
		}

		item, err := r.GetTreeItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return apperrors.NotFound("tree item %s is no longer available", itemID)
		}
		if tree.Inventory[itemID]-tree.EquippedCount(itemID) <= 0 {
			return apperrors.Validation("no unequipped %s in inventory", item.Name)
		}

		now := e.now()
		var entries []models.GrowthEntry
		if entry := syncStage(&tree, duo.TrustScore, now); entry != nil {
			entries = append(entries, *entry)
		}

		capacity := Capacity(tree.Stage)
		if len(tree.Decorations) >= capacity {
			return apperrors.CapacityExceeded("%s holds %d decorations", tree.Stage, capacity)
		}
		for i, d := range tree.Decorations {
			if validation.Overlaps(d.Position, pos) {
				return apperrors.SlotOccupied("slot %d (%s) is within %.0f units of (%.1f, %.1f)",
					i, d.ItemID, constants.SlotTolerance, pos.X, pos.Y)
			}
		}

		tree.Decorations = append(tree.Decorations, models.Decoration{
			ItemID:     itemID,
			Position:   pos,
			EquippedAt: now,
		})
		entries = append(entries, models.GrowthEntry{
			At:      now,
			Kind:    constants.GrowthDecoration,
			Message: fmt.Sprintf("Equipped %s at (%.1f, %.1f)", item.Name, pos.X, pos.Y),
		})

		if err := r.UpdateTree(ctx, tree); err != nil {
			return err
		}
		if err := r.AppendGrowthLog(ctx, tree.ID, entries...); err != nil {
			return err
		}
		tree.GrowthLog = append(tree.GrowthLog, entries...)
		return nil
	})
	if err != nil {
		return models.Tree{}, err
	}

	logger.Info("Decoration equipped", "duo", duoID, "item", itemID, "slots", len(tree.Decorations))
	return tree, nil
}

// RemoveDecoration unequips the decoration at index. The item stays in
// the inventory.
func (e *Engine) RemoveDecoration(ctx context.Context, duoID string, index int) (models.Tree, error) {
	var tree models.Tree
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		tree, err = r.GetTree(ctx, duoID)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(tree.Decorations) {
			return apperrors.NotFound("decoration %d on tree of duo %s", index, duoID)
		}

		removed := tree.Decorations[index]
		tree.Decorations = append(tree.Decorations[:index:index], tree.Decorations[index+1:]...)

		entry := models.GrowthEntry{
			At:      e.now(),
			Kind:    constants.GrowthDecoration,
			Message: fmt.Sprintf("Removed %s", removed.ItemID),
		}
		if err := r.UpdateTree(ctx, tree); err != nil {
			return err
		}
		if err := r.AppendGrowthLog(ctx, tree.ID, entry); err != nil {
			return err
		}
		tree.GrowthLog = append(tree.GrowthLog, entry)
		return nil
	})
	if err != nil {
		return models.Tree{}, err
	}
	return tree, nil
}
