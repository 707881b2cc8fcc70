package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tandrum/tandrum/internal/backup"
	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/migration"
	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

type DoctorCmd struct{}

type severity int

const (
	fail severity = iota
	warn
)

type check struct {
	name     string
	severity severity
	needsDB  bool
	run      func(context.Context, *cli.Context) error
}

var checks = []check{
	{"Database reachable", fail, false, checkDBReachable},
	{"Schema version", fail, true, checkSchemaVersion},
	{"Migrations complete", fail, true, checkMigrationsComplete},
	{"Backups present", warn, false, checkBackupsPresent},
	{"Item catalog", warn, true, checkCatalog},
	{"Data integrity", fail, true, checkIntegrity},
	{"Clock/timezone", fail, false, checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	bg := context.Background()
	failures := 0
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.severity == warn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failures++
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if failures > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failures)
	}
	ctx.Println("All checks passed.")
	return nil
}

type statusReporter interface {
	MigrationStatus() (migration.Status, error)
}

func migrationStatus(ctx *cli.Context) (migration.Status, bool, error) {
	r, ok := ctx.Store.(statusReporter)
	if !ok {
		return migration.Status{}, false, nil
	}
	st, err := r.MigrationStatus()
	return st, true, err
}

func checkDBReachable(_ context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return errors.New("database connection is nil")
		}
		var one int
		if err := db.QueryRow("SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if err != nil || !ok {
		return err
	}
	if st.Current > st.Latest {
		return fmt.Errorf("schema version %d is newer than supported version %d, upgrade %s", st.Current, st.Latest, constants.AppName)
	}
	return nil
}

func checkMigrationsComplete(_ context.Context, ctx *cli.Context) error {
	st, ok, err := migrationStatus(ctx)
	if err != nil || !ok {
		return err
	}
	if st.Pending() {
		return fmt.Errorf("schema at version %d, latest is %d - run '%s migrate'", st.Current, st.Latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkCatalog(bg context.Context, ctx *cli.Context) error {
	items, err := ctx.Engine.ListActiveItems(bg)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no active items, rewards will never drop - run '%s items seed'", constants.AppName)
	}
	return nil
}

func checkIntegrity(bg context.Context, ctx *cli.Context) error {
	res, err := ctx.Engine.Check(bg)
	if err != nil {
		return err
	}
	if res.HasConflicts() {
		return errors.New(res.FormatReport())
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Engine == nil || ctx.Engine.Location() == nil {
		return errors.New("no timezone configured")
	}
	return nil
}
