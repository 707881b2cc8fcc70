package progression

import (
	"math"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
)

// BuffSummary aggregates the buffs of every equipped decoration
type BuffSummary struct {
	XPMultiplier     float64 `json:"xp_multiplier"` // product of all multipliers, 1 when none
	FocusBonus       int     `json:"focus_bonus"`
	StreakProtection bool    `json:"streak_protection"`
	DailyXPBonus     int     `json:"daily_xp_bonus"`
}

// SummarizeBuffs combines the buffs of the tree's decorations. Only items
// present and active in catalog contribute.
func SummarizeBuffs(tree models.Tree, catalog map[string]models.TreeItem) BuffSummary {
	s := BuffSummary{XPMultiplier: 1}
	for _, d := range tree.Decorations {
		it, ok := catalog[d.ItemID]
		if !ok || !it.IsActive {
			continue
		}
		if it.Buffs.XPMultiplier > 0 {
			s.XPMultiplier *= it.Buffs.XPMultiplier
		}
		s.FocusBonus += it.Buffs.FocusBonus
		s.DailyXPBonus += it.Buffs.DailyXPBonus
		s.StreakProtection = s.StreakProtection || it.Buffs.StreakProtection
	}
	return s
}

// ComputeXP is the XP awarded for one mutual completion.
func ComputeXP(b BuffSummary) int {
	mult := b.XPMultiplier
	if mult <= 0 {
		mult = 1
	}
	return int(math.Round(float64(constants.BaseXP)*mult)) + b.DailyXPBonus
}

// Roll is the outcome of RollRewards before it is applied
type Roll struct {
	XP   int
	Item *models.TreeItem
}

// RollRewards computes the XP for a mutual completion and rolls an item
// drop. level is the duo's level before the XP is added.
func RollRewards(level int, buffs BuffSummary, items []models.TreeItem, rng Rand) Roll {
	return Roll{
		XP:   ComputeXP(buffs),
		Item: RollItem(level, items, rng),
	}
}

// Rewards is what a mutual completion granted the duo
type Rewards struct {
	XP             int              `json:"xp"`
	Item           *models.TreeItem `json:"item,omitempty"`
	Streak         int              `json:"streak"`
	ProtectionUsed bool             `json:"protection_used,omitempty"`
	TrustScore     int              `json:"trust_score"`
	Level          int              `json:"level"`
	Stage          constants.Stage  `json:"stage"`
	StageChanged   bool             `json:"stage_changed,omitempty"`
	FocusBonus     int              `json:"focus_bonus,omitempty"`
}
