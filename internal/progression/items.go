package progression

import (
	"context"
	"fmt"

	"github.com/tandrum/tandrum/internal/catalog"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/validation"
)

// ErrCatalogSeeded is returned when seeding a catalog that already has items.
var ErrCatalogSeeded = fmt.Errorf("%w: item catalog already seeded", apperrors.ErrValidation)

// SeedCatalog loads the built-in catalog into an empty item table.
func (e *Engine) SeedCatalog(ctx context.Context) (int, error) {
	items, err := catalog.Default()
	if err != nil {
		return 0, err
	}
	return e.SeedItems(ctx, items)
}

// SeedItems stores items into an empty item table, all or nothing.
func (e *Engine) SeedItems(ctx context.Context, items []models.TreeItem) (int, error) {
	for _, it := range items {
		if err := validation.ValidateItem(it); err != nil {
			return 0, err
		}
	}

	err := e.tx(ctx, func(r storage.Repository) error {
		n, err := r.CountTreeItems(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w (%d items present)", ErrCatalogSeeded, n)
		}
		for _, it := range items {
			if err := r.AddTreeItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Item catalog seeded", "items", len(items))
	return len(items), nil
}

// ListItems returns catalog items ordered by id, optionally including
// deactivated ones.
func (e *Engine) ListItems(ctx context.Context, includeInactive bool) ([]models.TreeItem, error) {
	var items []models.TreeItem
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		items, err = r.ListTreeItems(ctx, includeInactive)
		return err
	})
	return items, err
}

// ListActiveItems returns the items that can currently drop.
func (e *Engine) ListActiveItems(ctx context.Context) ([]models.TreeItem, error) {
	return e.ListItems(ctx, false)
}

// GetItem loads one item, active or not.
func (e *Engine) GetItem(ctx context.Context, itemID string) (models.TreeItem, error) {
	var item models.TreeItem
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		item, err = r.GetTreeItem(ctx, itemID)
		return err
	})
	return item, err
}

// ItemUpdate lists the item fields to change; nil fields are left alone.
// Category and rarity are fixed once an item exists.
type ItemUpdate struct {
	Name               *string
	Description        *string
	Buffs              *models.Buffs
	Ability            *string
	AbilityDescription *string
	IsActive           *bool
}

// UpdateItem edits a catalog item. Items are deactivated rather than
// deleted so inventories and decorations keep resolving.
func (e *Engine) UpdateItem(ctx context.Context, itemID string, upd ItemUpdate) (models.TreeItem, error) {
	var item models.TreeItem
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		item, err = r.GetTreeItem(ctx, itemID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			item.Name = *upd.Name
		}
		if upd.Description != nil {
			item.Description = *upd.Description
		}
		if upd.Buffs != nil {
			item.Buffs = *upd.Buffs
		}
		if upd.Ability != nil {
			item.Ability = *upd.Ability
		}
		if upd.AbilityDescription != nil {
			item.AbilityDescription = *upd.AbilityDescription
		}
		if upd.IsActive != nil {
			item.IsActive = *upd.IsActive
		}

		if err := validation.ValidateItem(item); err != nil {
			return err
		}
		return r.UpdateTreeItem(ctx, item)
	})
	if err != nil {
		return models.TreeItem{}, err
	}

	logger.Info("Item updated", "item", itemID, "active", item.IsActive)
	return item, nil
}
