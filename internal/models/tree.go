package models

import (
	"time"

	"github.com/tandrum/tandrum/internal/constants"
)

// Position is a point on the tree canvas
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Decoration is an equipped catalog item
type Decoration struct {
	ItemID     string    `json:"item_id"`
	Position   Position  `json:"position"`
	EquippedAt time.Time `json:"equipped_at"`
}

// GrowthEntry is one line of a tree's append-only growth log
type GrowthEntry struct {
	At      time.Time            `json:"at"`
	Kind    constants.GrowthKind `json:"kind"`
	Message string               `json:"message"`
}

// Tree is the duo's shared tree
type Tree struct {
	ID          string          `json:"id"`
	DuoID       string          `json:"duo_id"`
	Stage       constants.Stage `json:"stage"`
	Leaves      int             `json:"leaves"`
	Fruits      int             `json:"fruits"`
	Inventory   map[string]int  `json:"inventory"`
	Decorations []Decoration    `json:"decorations"`
	GrowthLog   []GrowthEntry   `json:"growth_log,omitempty"`
}

// EquippedCount returns how many copies of itemID are currently equipped.
func (t Tree) EquippedCount(itemID string) int {
	n := 0
	for _, d := range t.Decorations {
		if d.ItemID == itemID {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	c := t
	c.Inventory = make(map[string]int, len(t.Inventory))
	for k, v := range t.Inventory {
		c.Inventory[k] = v
	}
	c.Decorations = append([]Decoration(nil), t.Decorations...)
	c.GrowthLog = append([]GrowthEntry(nil), t.GrowthLog...)
	return c
}
