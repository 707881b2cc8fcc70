package duos

import (
	"context"
	"fmt"
	"strings"

	"github.com/tandrum/tandrum/internal/cli"
)

type DuoCmd struct {
	Create DuoCreateCmd `cmd:"" help:"Pair two users and plant their tree."`
	Show   DuoShowCmd   `cmd:"" help:"Show a duo's level, streak and tree."`
	List   DuoListCmd   `cmd:"" help:"List all duos."`
	Adjust DuoAdjustCmd `cmd:"" help:"Correct a duo's trust score (admin)."`
}

type DuoCreateCmd struct {
	User1 string `arg:"" help:"First user."`
	User2 string `arg:"" help:"Second user."`
}

func (c *DuoCreateCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	duo, tree, err := ctx.Engine.CreateDuo(bg, c.User1, c.User2)
	if err != nil {
		return err
	}
	return ctx.Emit(map[string]interface{}{"duo": duo, "tree": tree},
		fmt.Sprintf("%s Duo %s created for %s and %s. Tree planted at %s.",
			cli.SuccessStyle.Render("✓"), duo.ID, duo.User1, duo.User2, cli.StageBadge(tree.Stage)))
}

type DuoShowCmd struct {
	ID string `arg:"" help:"Duo ID."`
}

func (c *DuoShowCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine.DuoStatus(context.Background(), c.ID)
	if err != nil {
		return err
	}
	return ctx.Emit(st, cli.RenderStatus(st))
}

type DuoListCmd struct{}

func (c *DuoListCmd) Run(ctx *cli.Context) error {
	duos, err := ctx.Engine.ListDuos(context.Background())
	if err != nil {
		return err
	}
	if len(duos) == 0 && !ctx.JSON {
		ctx.Println("No duos found.")
		return nil
	}

	var b strings.Builder
	for _, d := range duos {
		fmt.Fprintf(&b, "%s  %s & %s  trust %d  streak %d\n", d.ID, d.User1, d.User2, d.TrustScore, d.Streak)
	}
	return ctx.Emit(duos, strings.TrimRight(b.String(), "\n"))
}

type DuoAdjustCmd struct {
	ID     string `arg:"" help:"Duo ID."`
	Delta  int    `arg:"" help:"Points to add (negative to subtract)."`
	Reason string `help:"Why the score is being corrected; recorded in the growth log."`
}

func (c *DuoAdjustCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	duo, err := ctx.Engine.AdjustTrustScore(bg, c.ID, c.Delta, c.Reason)
	if err != nil {
		return err
	}
	return ctx.Emit(duo, fmt.Sprintf("Trust score for %s is now %d.", duo.ID, duo.TrustScore))
}
