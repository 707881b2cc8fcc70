package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
)

// ConflictType represents the type of integrity conflict
type ConflictType string

const (
	ConflictDuplicateHabitTitle ConflictType = "duplicate_habit_title"
	ConflictInvalidFrequency    ConflictType = "invalid_frequency"
	ConflictOverCapacity        ConflictType = "decorations_over_capacity"
	ConflictOverlappingSlots    ConflictType = "overlapping_slots"
	ConflictStageDrift          ConflictType = "stage_drift"
	ConflictNegativeCounter     ConflictType = "negative_counter"
	ConflictUnknownItem         ConflictType = "unknown_item"
)

// Conflict represents a detected integrity problem in a duo's data
type Conflict struct {
	Type        ConflictType
	Description string
	DuoID       string
	Items       []string // habit titles or item ids involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

var folder = cases.Fold()

// TitleKey returns the comparison key for a habit title: trimmed, NFC
// normalized and case folded, so "Read" and "read" collide.
func TitleKey(title string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(title)))
}

// NormalizeTitle trims and NFC-normalizes a title for storage.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}

// ValidateHabitTitle checks the title length bounds.
func ValidateHabitTitle(title string) error {
	n := utf8.RuneCountInString(NormalizeTitle(title))
	if n < constants.HabitTitleMin || n > constants.HabitTitleMax {
		return apperrors.Validation("habit title must be %d-%d characters, got %d",
			constants.HabitTitleMin, constants.HabitTitleMax, n)
	}
	return nil
}

// ValidateFrequency rejects anything other than daily or weekly.
func ValidateFrequency(f constants.Frequency) error {
	if !f.Valid() {
		return apperrors.Validation("invalid frequency %q (expected daily or weekly)", f)
	}
	return nil
}

// ValidateUniqueTitle fails when another habit in existing (other than
// selfID) already uses the same title key.
func ValidateUniqueTitle(existing []models.Habit, title, selfID string) error {
	key := TitleKey(title)
	for _, h := range existing {
		if h.ID == selfID {
			continue
		}
		if h.TitleKey == key {
			return apperrors.Validation("a habit titled %q already exists in this duo", h.Title)
		}
	}
	return nil
}

// ValidateDuoUsers checks that a duo pairs two distinct, non-empty users.
func ValidateDuoUsers(user1, user2 string) error {
	u1, u2 := strings.TrimSpace(user1), strings.TrimSpace(user2)
	if u1 == "" || u2 == "" {
		return apperrors.Validation("a duo needs two users")
	}
	if u1 == u2 {
		return apperrors.Validation("a duo needs two distinct users, got %q twice", u1)
	}
	return nil
}

// ValidateItem checks a catalog entry before it is stored.
func ValidateItem(item models.TreeItem) error {
	if strings.TrimSpace(item.ItemID) == "" {
		return apperrors.Validation("item id is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return apperrors.Validation("item %s: name is required", item.ItemID)
	}
	if !item.Category.Valid() {
		return apperrors.Validation("item %s: invalid category %q", item.ItemID, item.Category)
	}
	if !item.Rarity.Valid() {
		return apperrors.Validation("item %s: invalid rarity %q", item.ItemID, item.Rarity)
	}
	if item.Buffs.XPMultiplier < 0 || item.Buffs.DailyXPBonus < 0 || item.Buffs.FocusBonus < 0 {
		return apperrors.Validation("item %s: buffs must not be negative", item.ItemID)
	}
	return nil
}

// Overlaps reports whether two decoration positions are closer than the
// slot tolerance.
func Overlaps(a, b models.Position) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) < constants.SlotTolerance
}

// Validator checks stored duo data for integrity problems
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateDuo checks a duo, its tree and habits. impliedStage is the
// stage the duo's trust score implies; catalog maps known item ids.
func (v *Validator) ValidateDuo(duo models.Duo, tree models.Tree, habits []models.Habit, impliedStage constants.Stage, catalog map[string]models.TreeItem) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]string)
	for _, h := range habits {
		key := h.TitleKey
		if key == "" {
			key = TitleKey(h.Title)
		}
		titles[key] = append(titles[key], h.Title)
		if !h.Frequency.Valid() {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidFrequency,
				Description: fmt.Sprintf("Habit %q has invalid frequency %q", h.Title, h.Frequency),
				DuoID:       duo.ID,
				Items:       []string{h.Title},
			})
		}
	}
	keys := make([]string, 0, len(titles))
	for k := range titles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if names := titles[k]; len(names) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitTitle,
				Description: fmt.Sprintf("Duplicate habit title in duo %s: %v", duo.ID, names),
				DuoID:       duo.ID,
				Items:       names,
			})
		}
	}

	if duo.Streak < 0 || duo.TrustScore < 0 || tree.Leaves < 0 || tree.Fruits < 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictNegativeCounter,
			Description: fmt.Sprintf("Duo %s has a negative counter (streak %d, trust %d, leaves %d, fruits %d)", duo.ID, duo.Streak, duo.TrustScore, tree.Leaves, tree.Fruits),
			DuoID:       duo.ID,
		})
	}

	if tree.Stage.Index() < impliedStage.Index() {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictStageDrift,
			Description: fmt.Sprintf("Tree of duo %s is at %s but trust score %d implies %s", duo.ID, tree.Stage, duo.TrustScore, impliedStage),
			DuoID:       duo.ID,
		})
	}

	if capacity := constants.StageCapacity[tree.Stage]; len(tree.Decorations) > capacity {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictOverCapacity,
			Description: fmt.Sprintf("Tree of duo %s holds %d decorations but %s allows %d", duo.ID, len(tree.Decorations), tree.Stage, capacity),
			DuoID:       duo.ID,
		})
	}

	for i := 0; i < len(tree.Decorations); i++ {
		d := tree.Decorations[i]
		if _, ok := catalog[d.ItemID]; !ok && catalog != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownItem,
				Description: fmt.Sprintf("Tree of duo %s has decoration %q which is not in the catalog", duo.ID, d.ItemID),
				DuoID:       duo.ID,
				Items:       []string{d.ItemID},
			})
		}
		// O(n²) is fine, a tree holds at most six decorations
		for j := i + 1; j < len(tree.Decorations); j++ {
			if Overlaps(d.Position, tree.Decorations[j].Position) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictOverlappingSlots,
					Description: fmt.Sprintf("Decorations %d and %d on duo %s's tree overlap", i, j, duo.ID),
					DuoID:       duo.ID,
					Items:       []string{d.ItemID, tree.Decorations[j].ItemID},
				})
			}
		}
	}

	return result
}
