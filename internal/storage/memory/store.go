// Package memory is an in-process storage backend for tests and dry runs.
// Each transaction works on a copy of the data that replaces the
// committed state only when the transaction succeeds.
package memory

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
)

type data struct {
	habits    map[string]models.Habit
	duos      map[string]models.Duo
	trees     map[string]models.Tree // keyed by duo ID
	growthLog map[string][]models.GrowthEntry
	items     map[string]models.TreeItem
}

func newData() *data {
	return &data{
		habits:    make(map[string]models.Habit),
		duos:      make(map[string]models.Duo),
		trees:     make(map[string]models.Tree),
		growthLog: make(map[string][]models.GrowthEntry),
		items:     make(map[string]models.TreeItem),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.habits {
		c.habits[k] = cloneHabit(v)
	}
	for k, v := range d.duos {
		c.duos[k] = v
	}
	for k, v := range d.trees {
		c.trees[k] = v.Clone()
	}
	for k, v := range d.growthLog {
		c.growthLog[k] = append([]models.GrowthEntry(nil), v...)
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	return c
}

func cloneHabit(h models.Habit) models.Habit {
	if h.LastCheckinA != nil {
		t := *h.LastCheckinA
		h.LastCheckinA = &t
	}
	if h.LastCheckinB != nil {
		t := *h.LastCheckinB
		h.LastCheckinB = &t
	}
	return h
}

// Store is a storage.Provider held entirely in memory
type Store struct {
	mu   sync.Mutex
	data *data
}

var _ storage.Provider = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newData()}
}

func (s *Store) Init() error  { return nil }
func (s *Store) Load() error  { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) GetConfigPath() string {
	return ":memory:"
}

// WithTx holds the store lock for the whole transaction.
func (s *Store) WithTx(ctx context.Context, fn func(storage.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(&repo{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type repo struct {
	d *data
}

func (r *repo) GetHabit(_ context.Context, id string) (models.Habit, error) {
	h, ok := r.d.habits[id]
	if !ok {
		return models.Habit{}, apperrors.NotFound("habit %s", id)
	}
	return cloneHabit(h), nil
}

func (r *repo) titleTaken(h models.Habit) bool {
	for _, other := range r.d.habits {
		if other.ID != h.ID && other.DuoID == h.DuoID && other.TitleKey == h.TitleKey {
			return true
		}
	}
	return false
}

func (r *repo) AddHabit(_ context.Context, h models.Habit) error {
	if _, exists := r.d.habits[h.ID]; exists {
		return apperrors.Validation("habit %s already exists", h.ID)
	}
	if r.titleTaken(h) {
		return apperrors.Validation("habit title %q already used by this duo", h.Title)
	}
	r.d.habits[h.ID] = cloneHabit(h)
	return nil
}

func (r *repo) UpdateHabit(_ context.Context, h models.Habit) error {
	if _, ok := r.d.habits[h.ID]; !ok {
		return apperrors.NotFound("habit %s", h.ID)
	}
	if r.titleTaken(h) {
		return apperrors.Validation("habit title %q already used by this duo", h.Title)
	}
	r.d.habits[h.ID] = cloneHabit(h)
	return nil
}

func (r *repo) ListHabitsForDuo(_ context.Context, duoID string) ([]models.Habit, error) {
	var habits []models.Habit
	for _, h := range r.d.habits {
		if h.DuoID == duoID {
			habits = append(habits, cloneHabit(h))
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (r *repo) GetDuo(_ context.Context, id string) (models.Duo, error) {
	d, ok := r.d.duos[id]
	if !ok {
		return models.Duo{}, apperrors.NotFound("duo %s", id)
	}
	return d, nil
}

func (r *repo) AddDuo(_ context.Context, d models.Duo) error {
	if _, exists := r.d.duos[d.ID]; exists {
		return apperrors.Validation("duo %s already exists", d.ID)
	}
	r.d.duos[d.ID] = d
	return nil
}

func (r *repo) UpdateDuo(_ context.Context, d models.Duo) error {
	if _, ok := r.d.duos[d.ID]; !ok {
		return apperrors.NotFound("duo %s", d.ID)
	}
	r.d.duos[d.ID] = d
	return nil
}

func (r *repo) ListDuos(_ context.Context) ([]models.Duo, error) {
	duos := make([]models.Duo, 0, len(r.d.duos))
	for _, d := range r.d.duos {
		duos = append(duos, d)
	}
	sort.Slice(duos, func(i, j int) bool {
		if !duos[i].CreatedAt.Equal(duos[j].CreatedAt) {
			return duos[i].CreatedAt.Before(duos[j].CreatedAt)
		}
		return duos[i].ID < duos[j].ID
	})
	return duos, nil
}

func (r *repo) GetTree(ctx context.Context, duoID string) (models.Tree, error) {
	t, ok := r.d.trees[duoID]
	if !ok {
		return models.Tree{}, apperrors.NotFound("tree for duo %s", duoID)
	}
	t = t.Clone()
	log, _ := r.GetGrowthLog(ctx, t.ID, storage.GrowthLogWindow)
	t.GrowthLog = log
	return t, nil
}

func (r *repo) AddTree(ctx context.Context, t models.Tree) error {
	if _, exists := r.d.trees[t.DuoID]; exists {
		return apperrors.Validation("duo %s already has a tree", t.DuoID)
	}
	stored := t.Clone()
	stored.GrowthLog = nil
	r.d.trees[t.DuoID] = stored
	return r.AppendGrowthLog(ctx, t.ID, t.GrowthLog...)
}

func (r *repo) UpdateTree(_ context.Context, t models.Tree) error {
	existing, ok := r.d.trees[t.DuoID]
	if !ok || existing.ID != t.ID {
		return apperrors.NotFound("tree %s", t.ID)
	}
	stored := t.Clone()
	stored.GrowthLog = nil
	r.d.trees[t.DuoID] = stored
	return nil
}

func (r *repo) AppendGrowthLog(_ context.Context, treeID string, entries ...models.GrowthEntry) error {
	r.d.growthLog[treeID] = append(r.d.growthLog[treeID], entries...)
	return nil
}

func (r *repo) GetGrowthLog(_ context.Context, treeID string, limit int) ([]models.GrowthEntry, error) {
	log := r.d.growthLog[treeID]
	if limit >= 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	return append([]models.GrowthEntry(nil), log...), nil
}

func (r *repo) GetTreeItem(_ context.Context, itemID string) (models.TreeItem, error) {
	it, ok := r.d.items[itemID]
	if !ok {
		return models.TreeItem{}, apperrors.NotFound("tree item %s", itemID)
	}
	return it, nil
}

func (r *repo) ListTreeItems(_ context.Context, includeInactive bool) ([]models.TreeItem, error) {
	var items []models.TreeItem
	for _, it := range r.d.items {
		if includeInactive || it.IsActive {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items, nil
}

func (r *repo) AddTreeItem(_ context.Context, it models.TreeItem) error {
	if _, exists := r.d.items[it.ItemID]; exists {
		return apperrors.Validation("tree item %s already exists", it.ItemID)
	}
	r.d.items[it.ItemID] = it
	return nil
}

func (r *repo) UpdateTreeItem(_ context.Context, it models.TreeItem) error {
	if _, ok := r.d.items[it.ItemID]; !ok {
		return apperrors.NotFound("tree item %s", it.ItemID)
	}
	r.d.items[it.ItemID] = it
	return nil
}

func (r *repo) CountTreeItems(_ context.Context) (int, error) {
	return len(r.d.items), nil
}
