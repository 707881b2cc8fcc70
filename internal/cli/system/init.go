package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/progression"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initializing."`
	Source string `help:"Database path or connection string to copy all data from."`
	NoSeed bool   `help:"Do not load the built-in item catalog."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized tandrum storage at: %s\n", ctx.Store.GetConfigPath())

	bg := context.Background()
	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(bg, ctx, c.Source); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		return nil
	}

	if c.NoSeed {
		return nil
	}
	n, err := ctx.Engine.SeedCatalog(bg)
	switch {
	case errors.Is(err, progression.ErrCatalogSeeded):
		ctx.Println("Item catalog already present.")
	case err != nil:
		return fmt.Errorf("failed to seed item catalog: %w", err)
	default:
		ctx.Printf("Seeded %d catalog items.\n", n)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force only supports SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err1 := filepath.Abs(dbPath)
		absSrc, err2 := filepath.Abs(c.Source)
		if err1 == nil && err2 == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func (c *InitCmd) copyFrom(bg context.Context, ctx *cli.Context, source string) error {
	src, err := cli.OpenStore(source, ctx.Vault)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	stats, err := storage.Copy(bg, src, ctx.Store)
	if err != nil {
		return err
	}
	ctx.Printf("  Copied %d items, %d duos, %d trees (%d growth log entries), %d habits\n",
		stats.Items, stats.Duos, stats.Trees, stats.GrowthLogs, stats.Habits)
	return nil
}
