package system

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/keyring"
	"github.com/tandrum/tandrum/internal/progression"
	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

func newTestContext(t *testing.T) (*cli.Context, string, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tandrum.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:  store,
		Engine: progression.New(store, progression.WithSeed(1), progression.WithLocation(time.UTC)),
		Vault:  keyring.Default(),
		Out:    &out,
	}
	return ctx, dbPath, &out
}
