package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
)

// Repo is a storage.Repository bound to one transaction
type Repo struct {
	tx *sql.Tx
	d  Dialect
}

var _ storage.Repository = (*Repo)(nil)

// New binds a repository to tx
func New(tx *sql.Tx, d Dialect) *Repo {
	return &Repo{tx: tx, d: d}
}

// RunInTx begins a transaction on db, runs fn and commits, rolling back
// if fn or the commit fails.
func RunInTx(ctx context.Context, db *sql.DB, d Dialect, fn func(storage.Repository) error) error {
	if db == nil {
		return fmt.Errorf("storage not loaded")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(New(tx, d)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repo) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.tx.ExecContext(ctx, r.d.Rebind(query), args...)
}

func (r *Repo) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.tx.QueryContext(ctx, r.d.Rebind(query), args...)
}

func (r *Repo) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.tx.QueryRowContext(ctx, r.d.Rebind(query), args...)
}

// expectOne turns a zero-row update into a NotFound error
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("%s %s", what, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	ms := models.TimeToMillis(t)
	if ms == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *ms, Valid: true}
}

func millisPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	return models.MillisToTime(&n.Int64)
}

// Habits

const habitColumns = `id, duo_id, title, title_key, frequency, last_checkin_a, last_checkin_b, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var freq, createdAt, updatedAt string
	var lastA, lastB sql.NullInt64

	if err := row.Scan(&h.ID, &h.DuoID, &h.Title, &h.TitleKey, &freq, &lastA, &lastB, &createdAt, &updatedAt); err != nil {
		return models.Habit{}, err
	}
	h.Frequency = constants.Frequency(freq)
	h.LastCheckinA = millisPtr(lastA)
	h.LastCheckinB = millisPtr(lastB)

	var err error
	if h.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (r *Repo) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := r.queryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`+r.d.LockSuffix, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, apperrors.NotFound("habit %s", id)
	}
	return h, err
}

func (r *Repo) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := r.exec(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.DuoID, h.Title, h.TitleKey, string(h.Frequency),
		nullMillis(h.LastCheckinA), nullMillis(h.LastCheckinB),
		formatTime(h.CreatedAt), formatTime(h.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *Repo) UpdateHabit(ctx context.Context, h models.Habit) error {
	res, err := r.exec(ctx, `
		UPDATE habits SET title = ?, title_key = ?, frequency = ?,
			last_checkin_a = ?, last_checkin_b = ?, updated_at = ?
		WHERE id = ?`,
		h.Title, h.TitleKey, string(h.Frequency),
		nullMillis(h.LastCheckinA), nullMillis(h.LastCheckinB),
		formatTime(h.UpdatedAt), h.ID)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	return expectOne(res, "habit", h.ID)
}

func (r *Repo) ListHabitsForDuo(ctx context.Context, duoID string) ([]models.Habit, error) {
	rows, err := r.query(ctx, `SELECT `+habitColumns+` FROM habits WHERE duo_id = ? ORDER BY created_at, id`, duoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// Duos

const duoColumns = `id, user1, user2, streak, trust_score, last_completion_day, protection_week, created_at`

func scanDuo(row scanner) (models.Duo, error) {
	var d models.Duo
	var lastDay, week sql.NullString
	var createdAt string

	if err := row.Scan(&d.ID, &d.User1, &d.User2, &d.Streak, &d.TrustScore, &lastDay, &week, &createdAt); err != nil {
		return models.Duo{}, err
	}
	d.LastCompletionDay = lastDay.String
	d.ProtectionWeek = week.String

	var err error
	if d.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Duo{}, err
	}
	return d, nil
}

func (r *Repo) GetDuo(ctx context.Context, id string) (models.Duo, error) {
	row := r.queryRow(ctx, `SELECT `+duoColumns+` FROM duos WHERE id = ?`+r.d.LockSuffix, id)
	d, err := scanDuo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Duo{}, apperrors.NotFound("duo %s", id)
	}
	return d, err
}

func (r *Repo) AddDuo(ctx context.Context, d models.Duo) error {
	_, err := r.exec(ctx, `
		INSERT INTO duos (`+duoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.User1, d.User2, d.Streak, d.TrustScore,
		nullString(d.LastCompletionDay), nullString(d.ProtectionWeek), formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert duo: %w", err)
	}
	return nil
}

func (r *Repo) UpdateDuo(ctx context.Context, d models.Duo) error {
	res, err := r.exec(ctx, `
		UPDATE duos SET streak = ?, trust_score = ?, last_completion_day = ?, protection_week = ?
		WHERE id = ?`,
		d.Streak, d.TrustScore, nullString(d.LastCompletionDay), nullString(d.ProtectionWeek), d.ID)
	if err != nil {
		return fmt.Errorf("failed to update duo: %w", err)
	}
	return expectOne(res, "duo", d.ID)
}

func (r *Repo) ListDuos(ctx context.Context) ([]models.Duo, error) {
	rows, err := r.query(ctx, `SELECT `+duoColumns+` FROM duos ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duos []models.Duo
	for rows.Next() {
		d, err := scanDuo(rows)
		if err != nil {
			return nil, err
		}
		duos = append(duos, d)
	}
	return duos, rows.Err()
}

// Trees

func (r *Repo) GetTree(ctx context.Context, duoID string) (models.Tree, error) {
	row := r.queryRow(ctx, `
		SELECT id, duo_id, stage, leaves, fruits, inventory, decorations
		FROM trees WHERE duo_id = ?`+r.d.LockSuffix, duoID)

	var t models.Tree
	var stage, inventory, decorations string
	err := row.Scan(&t.ID, &t.DuoID, &stage, &t.Leaves, &t.Fruits, &inventory, &decorations)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tree{}, apperrors.NotFound("tree for duo %s", duoID)
	}
	if err != nil {
		return models.Tree{}, err
	}
	t.Stage = constants.Stage(stage)

	if err := json.Unmarshal([]byte(inventory), &t.Inventory); err != nil {
		return models.Tree{}, fmt.Errorf("failed to decode inventory for tree %s: %w", t.ID, err)
	}
	if t.Inventory == nil {
		t.Inventory = map[string]int{}
	}
	if err := json.Unmarshal([]byte(decorations), &t.Decorations); err != nil {
		return models.Tree{}, fmt.Errorf("failed to decode decorations for tree %s: %w", t.ID, err)
	}

	t.GrowthLog, err = r.GetGrowthLog(ctx, t.ID, storage.GrowthLogWindow)
	if err != nil {
		return models.Tree{}, err
	}
	return t, nil
}

func encodeTree(t models.Tree) (inventory, decorations string, err error) {
	inv := t.Inventory
	if inv == nil {
		inv = map[string]int{}
	}
	decs := t.Decorations
	if decs == nil {
		decs = []models.Decoration{}
	}
	ib, err := json.Marshal(inv)
	if err != nil {
		return "", "", err
	}
	db, err := json.Marshal(decs)
	if err != nil {
		return "", "", err
	}
	return string(ib), string(db), nil
}

func (r *Repo) AddTree(ctx context.Context, t models.Tree) error {
	inventory, decorations, err := encodeTree(t)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	_, err = r.exec(ctx, `
		INSERT INTO trees (id, duo_id, stage, leaves, fruits, inventory, decorations)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DuoID, string(t.Stage), t.Leaves, t.Fruits, inventory, decorations)
	if err != nil {
		return fmt.Errorf("failed to insert tree: %w", err)
	}
	return r.AppendGrowthLog(ctx, t.ID, t.GrowthLog...)
}

func (r *Repo) UpdateTree(ctx context.Context, t models.Tree) error {
	inventory, decorations, err := encodeTree(t)
	if err != nil {
		return fmt.Errorf("failed to encode tree: %w", err)
	}
	res, err := r.exec(ctx, `
		UPDATE trees SET stage = ?, leaves = ?, fruits = ?, inventory = ?, decorations = ?
		WHERE id = ?`,
		string(t.Stage), t.Leaves, t.Fruits, inventory, decorations, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update tree: %w", err)
	}
	return expectOne(res, "tree", t.ID)
}

func (r *Repo) AppendGrowthLog(ctx context.Context, treeID string, entries ...models.GrowthEntry) error {
	for _, e := range entries {
		if _, err := r.exec(ctx, `
			INSERT INTO tree_growth_log (tree_id, at, kind, message) VALUES (?, ?, ?, ?)`,
			treeID, formatTime(e.At), string(e.Kind), e.Message); err != nil {
			return fmt.Errorf("failed to append growth log: %w", err)
		}
	}
	return nil
}

func (r *Repo) GetGrowthLog(ctx context.Context, treeID string, limit int) ([]models.GrowthEntry, error) {
	query := `SELECT at, kind, message FROM tree_growth_log WHERE tree_id = ? ORDER BY id DESC`
	args := []any{treeID}
	if limit >= 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.GrowthEntry
	for rows.Next() {
		var e models.GrowthEntry
		var at, kind string
		if err := rows.Scan(&at, &kind, &e.Message); err != nil {
			return nil, err
		}
		if e.At, err = parseTime(at, "growth log time"); err != nil {
			return nil, err
		}
		e.Kind = constants.GrowthKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest were read first; hand them back oldest first
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Tree items

const itemColumns = `item_id, name, description, category, rarity, xp_multiplier, focus_bonus,
	streak_protection, daily_xp_bonus, ability, ability_description, is_active`

func scanItem(row scanner) (models.TreeItem, error) {
	var it models.TreeItem
	var category, rarity string
	err := row.Scan(&it.ItemID, &it.Name, &it.Description, &category, &rarity,
		&it.Buffs.XPMultiplier, &it.Buffs.FocusBonus, &it.Buffs.StreakProtection, &it.Buffs.DailyXPBonus,
		&it.Ability, &it.AbilityDescription, &it.IsActive)
	if err != nil {
		return models.TreeItem{}, err
	}
	it.Category = constants.Category(category)
	it.Rarity = constants.Rarity(rarity)
	return it, nil
}

func (r *Repo) GetTreeItem(ctx context.Context, itemID string) (models.TreeItem, error) {
	row := r.queryRow(ctx, `SELECT `+itemColumns+` FROM tree_items WHERE item_id = ?`, itemID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TreeItem{}, apperrors.NotFound("tree item %s", itemID)
	}
	return it, err
}

func (r *Repo) ListTreeItems(ctx context.Context, includeInactive bool) ([]models.TreeItem, error) {
	query := `SELECT ` + itemColumns + ` FROM tree_items`
	var args []any
	if !includeInactive {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY item_id`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.TreeItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repo) AddTreeItem(ctx context.Context, it models.TreeItem) error {
	_, err := r.exec(ctx, `
		INSERT INTO tree_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ItemID, it.Name, it.Description, string(it.Category), string(it.Rarity),
		it.Buffs.XPMultiplier, it.Buffs.FocusBonus, it.Buffs.StreakProtection, it.Buffs.DailyXPBonus,
		it.Ability, it.AbilityDescription, it.IsActive)
	if err != nil {
		return fmt.Errorf("failed to insert tree item %s: %w", it.ItemID, err)
	}
	return nil
}

func (r *Repo) UpdateTreeItem(ctx context.Context, it models.TreeItem) error {
	res, err := r.exec(ctx, `
		UPDATE tree_items SET name = ?, description = ?, category = ?, rarity = ?,
			xp_multiplier = ?, focus_bonus = ?, streak_protection = ?, daily_xp_bonus = ?,
			ability = ?, ability_description = ?, is_active = ?
		WHERE item_id = ?`,
		it.Name, it.Description, string(it.Category), string(it.Rarity),
		it.Buffs.XPMultiplier, it.Buffs.FocusBonus, it.Buffs.StreakProtection, it.Buffs.DailyXPBonus,
		it.Ability, it.AbilityDescription, it.IsActive, it.ItemID)
	if err != nil {
		return fmt.Errorf("failed to update tree item %s: %w", it.ItemID, err)
	}
	return expectOne(res, "tree item", it.ItemID)
}

func (r *Repo) CountTreeItems(ctx context.Context) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM tree_items`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
