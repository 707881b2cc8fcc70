package system

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/tandrum/tandrum/internal/cli"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/sqlite"
)

type testContext struct {
	ctx *cli.Context
	out *bytes.Buffer
}

// initialized returns a context on a freshly initialized database with
// the init output discarded.
func initialized(t *testing.T) testContext {
	t.Helper()
	ctx, _, out := newTestContext(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()
	return testContext{ctx, out}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	tc := initialized(t)

	// Missing backups is only a warning
	if err := (&DoctorCmd{}).Run(tc.ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, tc.out)
	}
	if !strings.Contains(tc.out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected a backup warning, got:\n%s", tc.out)
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _, out := newTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail when the database does not exist")
	}
	if !strings.Contains(out.String(), "SKIPPED") {
		t.Errorf("database checks should be skipped, got:\n%s", out)
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	tc := initialized(t)

	db := tc.ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("INSERT INTO schema_version (version, applied_at) VALUES (999, '2026-01-01T00:00:00Z')"); err != nil {
		t.Fatalf("failed to corrupt schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(tc.ctx); err == nil {
		t.Error("doctor should fail on a schema newer than this build")
	}
}

func TestDoctorCmd_StageDrift(t *testing.T) {
	tc := initialized(t)
	bg := context.Background()

	duo, _, err := tc.ctx.Engine.CreateDuo(bg, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	duo.TrustScore = 5000
	if err := tc.ctx.Store.WithTx(bg, func(r storage.Repository) error { return r.UpdateDuo(bg, duo) }); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(tc.ctx); err == nil {
		t.Error("doctor should report stage drift")
	}
	if !strings.Contains(tc.out.String(), "implies") {
		t.Errorf("drift not described in output:\n%s", tc.out)
	}
}

func TestDoctorCmd_EmptyCatalogWarns(t *testing.T) {
	ctx, _, out := newTestContext(t)
	if err := (&InitCmd{NoSeed: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("empty catalog should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Item catalog: WARNING") {
		t.Errorf("expected catalog warning:\n%s", out)
	}
}
