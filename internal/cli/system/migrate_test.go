package system

import (
	"strings"
	"testing"

	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, out := newTestContext(t)
	if err := (&InitCmd{NoSeed: true}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("expected up to date message, got %q", out.String())
	}
}

func TestMigrateCmd_AppliesPending(t *testing.T) {
	ctx, _, out := newTestContext(t)
	if err := (&InitCmd{NoSeed: true}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	db := ctx.Store.(*sqlite.Store).GetDB()
	for _, stmt := range []string{
		"DROP TABLE tree_growth_log",
		"DROP TABLE tree_items",
		"DROP TABLE trees",
		"DROP TABLE habits",
		"DROP TABLE duos",
		"DELETE FROM schema_version",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Successfully applied") {
		t.Errorf("expected applied message, got %q", out.String())
	}
}

func TestMigrateCmd_Uninitialized(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	if err := (&MigrateCmd{}).Run(ctx); err == nil {
		t.Error("migrate should fail before init")
	}
}
