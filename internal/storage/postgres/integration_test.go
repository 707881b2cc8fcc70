package postgres

import (
	"os"
	"testing"

	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/storagetest"
)

// Set TANDRUM_POSTGRES_TEST_URL to run against a real database, e.g.
// postgres://tandrum@localhost:5432/tandrum_test?sslmode=disable
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("TANDRUM_POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("TANDRUM_POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	storagetest.Run(t, func(t *testing.T) storage.Provider {
		store := New(connStr)
		if err := store.Init(); err != nil {
			t.Fatalf("Failed to initialize store: %v", err)
		}
		t.Cleanup(func() {
			db := store.GetDB()
			for _, table := range []string{"tree_growth_log", "trees", "habits", "duos", "tree_items"} {
				db.Exec("DELETE FROM " + table)
			}
			store.Close()
		})
		return store
	})
}
