package items

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tandrum/tandrum/internal/catalog"
	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/progression"
)

type ItemsCmd struct {
	Seed   ItemsSeedCmd   `cmd:"" help:"Load the item catalog into an empty database."`
	List   ItemsListCmd   `cmd:"" help:"List catalog items."`
	Update ItemsUpdateCmd `cmd:"" help:"Edit a catalog item (admin)."`
}

type ItemsSeedCmd struct {
	File string `type:"existingfile" help:"YAML catalog to load instead of the built-in one."`
}

func (c *ItemsSeedCmd) Run(ctx *cli.Context) error {
	items, err := c.load()
	if err != nil {
		return err
	}
	n, err := ctx.Engine.SeedItems(context.Background(), items)
	if err != nil {
		if errors.Is(err, progression.ErrCatalogSeeded) {
			return fmt.Errorf("%w, use 'items update' to change existing items", err)
		}
		return err
	}
	ctx.Printf("Seeded %d catalog items.\n", n)
	return nil
}

func (c *ItemsSeedCmd) load() ([]models.TreeItem, error) {
	if c.File == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return catalog.Parse(data)
}

type ItemsListCmd struct {
	All bool `help:"Include inactive items."`
}

func (c *ItemsListCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Engine.ListItems(context.Background(), c.All)
	if err != nil {
		return err
	}
	return ctx.Emit(items, cli.RenderItems(items))
}

type ItemsUpdateCmd struct {
	ID                 string   `arg:"" help:"Item ID."`
	Name               *string  `help:"Display name."`
	Description        *string  `help:"Description."`
	Ability            *string  `help:"Ability name."`
	AbilityDescription *string  `help:"Ability description."`
	XPMultiplier       *float64 `name:"xp-multiplier" help:"XP multiplier buff (0 for none)."`
	DailyXPBonus       *int     `name:"daily-xp-bonus" help:"Flat XP added per completion."`
	FocusBonus         *int     `name:"focus-bonus" help:"Focus bonus buff."`
	StreakProtection   *bool    `name:"streak-protection" help:"Whether the item protects a streak once a week."`
	Activate           bool     `xor:"active" help:"Allow the item to drop again."`
	Deactivate         bool     `xor:"active" help:"Stop the item from dropping."`
}

func (c *ItemsUpdateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	upd := progression.ItemUpdate{
		Name:               c.Name,
		Description:        c.Description,
		Ability:            c.Ability,
		AbilityDescription: c.AbilityDescription,
	}

	if c.XPMultiplier != nil || c.DailyXPBonus != nil || c.FocusBonus != nil || c.StreakProtection != nil {
		current, err := ctx.Engine.GetItem(bg, c.ID)
		if err != nil {
			return err
		}
		buffs := current.Buffs
		if c.XPMultiplier != nil {
			buffs.XPMultiplier = *c.XPMultiplier
		}
		if c.DailyXPBonus != nil {
			buffs.DailyXPBonus = *c.DailyXPBonus
		}
		if c.FocusBonus != nil {
			buffs.FocusBonus = *c.FocusBonus
		}
		if c.StreakProtection != nil {
			buffs.StreakProtection = *c.StreakProtection
		}
		upd.Buffs = &buffs
	}
	if c.Activate || c.Deactivate {
		active := c.Activate
		upd.IsActive = &active
	}

	ctx.PerformAutomaticBackup(bg)
	item, err := ctx.Engine.UpdateItem(bg, c.ID, upd)
	if err != nil {
		return err
	}
	return ctx.Emit(item, cli.RenderItems([]models.TreeItem{item}))
}
