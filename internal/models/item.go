package models

import "github.com/tandrum/tandrum/internal/constants"

// Buffs are passive effects granted by an equipped item. Zero values mean
// "no effect".
type Buffs struct {
	XPMultiplier     float64 `json:"xp_multiplier,omitempty" yaml:"xp_multiplier,omitempty"`
	FocusBonus       int     `json:"focus_bonus,omitempty" yaml:"focus_bonus,omitempty"`
	StreakProtection bool    `json:"streak_protection,omitempty" yaml:"streak_protection,omitempty"`
	DailyXPBonus     int     `json:"daily_xp_bonus,omitempty" yaml:"daily_xp_bonus,omitempty"`
}

// TreeItem is a catalog entry that can drop as a reward and be equipped
// as a decoration.
type TreeItem struct {
	ItemID             string             `json:"item_id" yaml:"item_id"`
	Name               string             `json:"name" yaml:"name"`
	Description        string             `json:"description" yaml:"description"`
	Category           constants.Category `json:"category" yaml:"category"`
	Rarity             constants.Rarity   `json:"rarity" yaml:"rarity"`
	Buffs              Buffs              `json:"buffs" yaml:"buffs"`
	Ability            string             `json:"ability,omitempty" yaml:"ability,omitempty"`
	AbilityDescription string             `json:"ability_description,omitempty" yaml:"ability_description,omitempty"`
	IsActive           bool               `json:"is_active" yaml:"is_active"`
}
