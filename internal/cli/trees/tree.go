package trees

import (
	"context"
	"fmt"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/models"
)

type TreeCmd struct {
	Show   TreeShowCmd   `cmd:"" help:"Show a duo's tree, inventory and recent growth."`
	Sync   TreeSyncCmd   `cmd:"" help:"Bring the tree stage in line with the trust score."`
	Equip  TreeEquipCmd  `cmd:"" help:"Place an owned item on the tree."`
	Remove TreeRemoveCmd `cmd:"" help:"Take a decoration off the tree."`
}

func catalog(ctx *cli.Context) (map[string]models.TreeItem, error) {
	items, err := ctx.Engine.ListItems(context.Background(), true)
	if err != nil {
		return nil, err
	}
	index := make(map[string]models.TreeItem, len(items))
	for _, it := range items {
		index[it.ItemID] = it
	}
	return index, nil
}

type TreeShowCmd struct {
	Duo string `arg:"" help:"Duo ID."`
}

func (c *TreeShowCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine.DuoStatus(context.Background(), c.Duo)
	if err != nil {
		return err
	}
	if ctx.JSON {
		return ctx.Emit(st.Tree, "")
	}
	items, err := catalog(ctx)
	if err != nil {
		return err
	}
	ctx.Println(cli.RenderTree(st.Tree, items))
	return nil
}

type TreeSyncCmd struct {
	Duo string `arg:"" help:"Duo ID."`
}

func (c *TreeSyncCmd) Run(ctx *cli.Context) error {
	stage, err := ctx.Engine.SyncTreeStage(context.Background(), c.Duo)
	if err != nil {
		return err
	}
	return ctx.Emit(map[string]string{"stage": string(stage)}, "Tree stage: "+cli.StageBadge(stage))
}

type TreeEquipCmd struct {
	Duo  string  `arg:"" help:"Duo ID."`
	Item string  `arg:"" help:"Item ID from the inventory."`
	X    float64 `arg:"" help:"Horizontal position."`
	Y    float64 `arg:"" help:"Vertical position."`
}

func (c *TreeEquipCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	tree, err := ctx.Engine.EquipDecoration(bg, c.Duo, c.Item, models.Position{X: c.X, Y: c.Y})
	if err != nil {
		return err
	}
	return ctx.Emit(tree, fmt.Sprintf("%s Equipped %s (%d decorations)", cli.SuccessStyle.Render("✓"), c.Item, len(tree.Decorations)))
}

type TreeRemoveCmd struct {
	Duo   string `arg:"" help:"Duo ID."`
	Index int    `arg:"" help:"Decoration index as shown by 'tree show'."`
}

func (c *TreeRemoveCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	tree, err := ctx.Engine.RemoveDecoration(bg, c.Duo, c.Index)
	if err != nil {
		return err
	}
	return ctx.Emit(tree, fmt.Sprintf("Removed decoration %d (%d left)", c.Index, len(tree.Decorations)))
}
