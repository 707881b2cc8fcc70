package storage

import (
	"context"

	"github.com/tandrum/tandrum/internal/models"
)

// Repository is the set of record operations available inside a
// transaction. Lookups of missing records return an error wrapping
// errors.ErrNotFound.
type Repository interface {
	// Habits
	GetHabit(ctx context.Context, id string) (models.Habit, error)
	AddHabit(ctx context.Context, habit models.Habit) error
	UpdateHabit(ctx context.Context, habit models.Habit) error
	ListHabitsForDuo(ctx context.Context, duoID string) ([]models.Habit, error)

	// Duos
	GetDuo(ctx context.Context, id string) (models.Duo, error)
	AddDuo(ctx context.Context, duo models.Duo) error
	UpdateDuo(ctx context.Context, duo models.Duo) error
	ListDuos(ctx context.Context) ([]models.Duo, error)

	// Trees. GetTree loads the most recent growth log entries only;
	// UpdateTree never rewrites the log, use AppendGrowthLog. GetGrowthLog
	// returns the newest limit entries oldest first, all of them when
	// limit is negative.
	GetTree(ctx context.Context, duoID string) (models.Tree, error)
	AddTree(ctx context.Context, tree models.Tree) error
	UpdateTree(ctx context.Context, tree models.Tree) error
	AppendGrowthLog(ctx context.Context, treeID string, entries ...models.GrowthEntry) error
	GetGrowthLog(ctx context.Context, treeID string, limit int) ([]models.GrowthEntry, error)

	// Tree item catalog
	GetTreeItem(ctx context.Context, itemID string) (models.TreeItem, error)
	ListTreeItems(ctx context.Context, includeInactive bool) ([]models.TreeItem, error)
	AddTreeItem(ctx context.Context, item models.TreeItem) error
	UpdateTreeItem(ctx context.Context, item models.TreeItem) error
	CountTreeItems(ctx context.Context) (int, error)
}

// Provider is a storage backend. All record access goes through WithTx so
// a check-in's reads and writes commit or roll back as one unit.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// WithTx runs fn inside a transaction. If fn returns an error nothing
	// it wrote is kept. Conflicting transactions on the same duo are
	// serialized by the backend.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Utils
	GetConfigPath() string
}

// GrowthLogWindow is how many recent growth log entries GetTree loads.
const GrowthLogWindow = 20
