package system

import (
	"fmt"

	"github.com/tandrum/tandrum/internal/cli"
)

type migrator interface {
	Migrate(logFn func(string)) (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage %s does not support migrations", ctx.Store.GetConfigPath())
	}

	count, err := m.Migrate(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
