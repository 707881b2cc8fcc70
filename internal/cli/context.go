// Package cli holds what every tandrum command shares: the command context,
// store selection and terminal rendering.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tandrum/tandrum/internal/backup"
	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/keyring"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/progression"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

type Context struct {
	Store  storage.Provider
	Engine *progression.Engine
	Vault  keyring.Vault
	JSON   bool

	Out io.Writer
	In  io.Reader
}

// NewContext wires a command context writing to stdout.
func NewContext(store storage.Provider, engine *progression.Engine) *Context {
	return &Context{
		Store:  store,
		Engine: engine,
		Vault:  keyring.Default(),
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Emit writes v as indented JSON when --json is set, otherwise the text
// rendering.
func (c *Context) Emit(v interface{}, text string) error {
	if !c.JSON {
		c.Println(text)
		return nil
	}
	enc := json.NewEncoder(c.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// PerformAutomaticBackup snapshots a SQLite database before the first
// mutating command of the day. Failures are logged and never interrupt
// the command.
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	today := time.Now().UTC().Format(constants.DateFormat)
	if len(backups) > 0 && backups[0].Timestamp.Format(constants.DateFormat) == today {
		return
	}
	if _, err := mgr.Create(ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
