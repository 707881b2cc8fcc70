package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
)

func catalogOf(items []models.TreeItem) map[string]models.TreeItem {
	m := make(map[string]models.TreeItem, len(items))
	for _, it := range items {
		m[it.ItemID] = it
	}
	return m
}

func TestSummarizeBuffs(t *testing.T) {
	catalog := catalogOf(testItems)
	catalog["double"] = models.TreeItem{ItemID: "double", Buffs: models.Buffs{XPMultiplier: 2}, IsActive: true}
	catalog["retired"] = models.TreeItem{ItemID: "retired", Buffs: models.Buffs{XPMultiplier: 3}, IsActive: false}

	tree := models.Tree{Decorations: []models.Decoration{
		{ItemID: "oak-leaf"},
		{ItemID: "double"},
		{ItemID: "apple"},
		{ItemID: "apple"},
		{ItemID: "shield-leaf"},
		{ItemID: "retired"},
		{ItemID: "unknown"},
	}}

	s := SummarizeBuffs(tree, catalog)
	assert.InDelta(t, 3.0, s.XPMultiplier, 1e-9)
	assert.Equal(t, 10, s.DailyXPBonus)
	assert.Equal(t, 10, s.FocusBonus)
	assert.True(t, s.StreakProtection)
}

func TestSummarizeBuffsEmpty(t *testing.T) {
	s := SummarizeBuffs(models.Tree{}, nil)
	assert.Equal(t, BuffSummary{XPMultiplier: 1}, s)
}

func TestComputeXP(t *testing.T) {
	tests := []struct {
		name  string
		buffs BuffSummary
		want  int
	}{
		{"no buffs", BuffSummary{XPMultiplier: 1}, constants.BaseXP},
		{"zero multiplier means none", BuffSummary{}, constants.BaseXP},
		{"multiplier", BuffSummary{XPMultiplier: 1.5}, 30},
		{"multiplier rounds", BuffSummary{XPMultiplier: 1.13}, 23},
		{"bonus is added after multiplying", BuffSummary{XPMultiplier: 2, DailyXPBonus: 5}, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeXP(tt.buffs))
		})
	}
}
