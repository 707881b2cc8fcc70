package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/progression"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a habit to a duo."`
	Edit    HabitEditCmd    `cmd:"" help:"Rename a habit or change its frequency."`
	List    HabitListCmd    `cmd:"" help:"List a duo's habits and who is done this period."`
	Checkin HabitCheckinCmd `cmd:"" help:"Check in a habit for one member of the duo."`
}

type HabitAddCmd struct {
	Duo       string `arg:"" help:"Duo ID."`
	Title     string `arg:"" help:"Habit title (3-50 characters)."`
	Frequency string `short:"f" enum:"daily,weekly" default:"daily" help:"daily or weekly."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	habit, err := ctx.Engine.CreateHabit(bg, c.Duo, c.Title, constants.Frequency(c.Frequency))
	if err != nil {
		return err
	}
	return ctx.Emit(habit, fmt.Sprintf("Added %s habit %q (%s)", habit.Frequency, habit.Title, habit.ID))
}

type HabitEditCmd struct {
	ID        string  `arg:"" help:"Habit ID."`
	Title     *string `help:"New title."`
	Frequency *string `short:"f" help:"New frequency (daily or weekly). Clears this period's check-ins."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if c.Title == nil && c.Frequency == nil {
		return errors.New("nothing to change, pass --title and/or --frequency")
	}
	upd := progression.HabitUpdate{Title: c.Title}
	if c.Frequency != nil {
		f := constants.Frequency(strings.ToLower(*c.Frequency))
		upd.Frequency = &f
	}

	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	habit, err := ctx.Engine.UpdateHabit(bg, c.ID, upd)
	if err != nil {
		return err
	}
	return ctx.Emit(habit, fmt.Sprintf("Updated habit %q (%s)", habit.Title, habit.Frequency))
}

type HabitListCmd struct {
	Duo string `arg:"" help:"Duo ID."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	habits, err := ctx.Engine.ListHabits(bg, c.Duo)
	if err != nil {
		return err
	}
	if len(habits) == 0 && !ctx.JSON {
		ctx.Println("No habits found.")
		return nil
	}

	duo, err := ctx.Engine.GetDuo(bg, c.Duo)
	if err != nil {
		return err
	}
	mark := func(done bool) string {
		if done {
			return cli.SuccessStyle.Render("✓")
		}
		return "·"
	}
	var b strings.Builder
	for _, h := range habits {
		fmt.Fprintf(&b, "%-36s  %-7s %s %s  %s %s  %s\n",
			h.ID, h.Frequency, mark(h.DoneA), duo.User1, mark(h.DoneB), duo.User2, h.Title)
	}
	return ctx.Emit(habits, strings.TrimRight(b.String(), "\n"))
}

type HabitCheckinCmd struct {
	ID   string `arg:"" help:"Habit ID."`
	User string `short:"u" required:"" help:"Duo member checking in."`
}

func (c *HabitCheckinCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.PerformAutomaticBackup(bg)

	res, err := ctx.Engine.CheckInAs(bg, c.ID, c.User)
	if err != nil {
		return err
	}
	return ctx.Emit(res, cli.RenderCheckIn(res))
}
