package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/cli/backups"
	"github.com/tandrum/tandrum/internal/cli/duos"
	"github.com/tandrum/tandrum/internal/cli/habits"
	"github.com/tandrum/tandrum/internal/cli/items"
	"github.com/tandrum/tandrum/internal/cli/system"
	"github.com/tandrum/tandrum/internal/cli/trees"
	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/keyring"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/progression"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path, PostgreSQL connection string, or 'keyring' to read the connection string from the OS keyring. PostgreSQL credentials must NOT be embedded in the connection string." env:"TANDRUM_DB" default:"${default_config}"`
	Timezone string `help:"IANA time zone that decides day and week boundaries." env:"TANDRUM_TIMEZONE" default:"Local"`
	Debug    bool   `help:"Log debug output to stderr." env:"TANDRUM_DEBUG"`
	Seed     uint64 `help:"Seed reward rolls for reproducible output (0 for random)."`
	JSON     bool   `name:"json" help:"Print results as JSON."`

	Init    system.InitCmd    `cmd:"" help:"Initialize tandrum storage and seed the item catalog."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Backup  backups.BackupCmd `cmd:"" help:"Manage database backups."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Duo     duos.DuoCmd       `cmd:"" help:"Manage duos."`
	Habit   habits.HabitCmd   `cmd:"" help:"Manage shared habits and check in."`
	Tree    trees.TreeCmd     `cmd:"" help:"Inspect and decorate a duo's tree."`
	Items   items.ItemsCmd    `cmd:"" help:"Manage the item catalog."`
}

// These commands manage storage state themselves and must run against an
// uninitialized or outdated database.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Shared habit tracking for two, with a tree that grows as you keep at it"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)
	command := strings.Fields(ctx.Command())[0]

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}

	vault := keyring.Default()

	// The keyring command must work before any secret is stored.
	var store storage.Provider
	if command != "keyring" {
		store, err = cli.OpenStore(CLI.Config, vault)
		if err != nil {
			fmt.Fprintln(os.Stderr, apperrors.Format(err))
			os.Exit(1)
		}
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: cli.ConfigDir(store)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	opts := []progression.Option{progression.WithLocation(loc)}
	if CLI.Seed != 0 {
		opts = append(opts, progression.WithSeed(CLI.Seed))
	}

	var engine *progression.Engine
	if store != nil {
		engine = progression.New(store, opts...)
	}
	appCtx := cli.NewContext(store, engine)
	appCtx.Vault = vault
	appCtx.JSON = CLI.JSON

	if store != nil {
		defer store.Close()
		if !skipLoad[command] {
			if err := store.Load(); err != nil {
				store.Close()
				apperrors.Fatal(err)
			}
		}
	}

	logger.Debug("Running command", "command", ctx.Command(), "timezone", loc.String())
	if err := ctx.Run(appCtx); err != nil {
		if store != nil {
			store.Close()
		}
		apperrors.Fatal(err)
	}
}
