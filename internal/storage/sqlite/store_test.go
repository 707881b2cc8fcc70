package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "tandrum.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestStore(t)
	})
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init")
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tandrum.db")
	store := NewStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.Close())

	reopened := NewStore(path)
	require.NoError(t, reopened.Init())
	defer reopened.Close()

	st, err := reopened.MigrationStatus()
	require.NoError(t, err)
	assert.False(t, st.Pending())
	assert.Equal(t, st.Latest, st.Current)
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tandrum.db")
	store := NewStore(path)
	require.NoError(t, store.Init())
	require.NoError(t, store.Close())

	loaded := NewStore(path)
	require.NoError(t, loaded.Load())
	defer loaded.Close()
	assert.Equal(t, path, loaded.GetConfigPath())
	assert.NotNil(t, loaded.GetDB())
}

// Concurrent read-modify-write transactions on one row must not lose
// updates.
func TestWithTxSerializesWriters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	duo := models.Duo{ID: "duo", User1: "a", User2: "b", CreatedAt: time.Now()}
	require.NoError(t, store.WithTx(ctx, func(r storage.Repository) error {
		return r.AddDuo(ctx, duo)
	}))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.WithTx(ctx, func(r storage.Repository) error {
				d, err := r.GetDuo(ctx, duo.ID)
				if err != nil {
					return err
				}
				d.TrustScore++
				return r.UpdateDuo(ctx, d)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, store.WithTx(ctx, func(r storage.Repository) error {
		d, err := r.GetDuo(ctx, duo.ID)
		require.NoError(t, err)
		assert.Equal(t, workers, d.TrustScore)
		return nil
	}))
}
