// Package sqlite is the default single-file storage backend. One pooled
// connection plus BEGIN IMMEDIATE transactions serialize writers in this
// process, and busy_timeout covers other processes sharing the file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/migration"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/storage/sqlrepo"
	"github.com/tandrum/tandrum/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) dsn() string {
	return fmt.Sprintf("%s?_txlock=immediate&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		s.path, constants.SQLiteBusyTimeout.Milliseconds())
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	s.db = db
	return nil
}

// Init creates the database file if needed and applies pending migrations.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	_, err := s.Migrate(func(msg string) { logger.Info(msg) })
	return err
}

// Migrate applies pending migrations to an open database and returns how
// many ran. logFn receives progress lines.
func (s *Store) Migrate(logFn func(string)) (int, error) {
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	n, err := runner.ApplyMigrations(logFn)
	if err != nil {
		return n, fmt.Errorf("failed to run migrations: %w", err)
	}
	return n, nil
}

// Load opens an initialized database and checks its schema version.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	if err := s.open(); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite)
}

// MigrationStatus reports the applied and available schema versions.
func (s *Store) MigrationStatus() (migration.Status, error) {
	runner, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return runner.Status()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(storage.Repository) error) error {
	return sqlrepo.RunInTx(ctx, s.db, sqlrepo.SQLite, fn)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, nil before Init or Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
