package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/progression"
)

func TestRenderStatus(t *testing.T) {
	st := progression.DuoStatus{
		Duo:           models.Duo{ID: "d1", User1: "alice", User2: "bob", TrustScore: 120, Streak: 3},
		Tree:          models.Tree{Stage: constants.StageSapling, Leaves: 2, Fruits: 1},
		Level:         2,
		NextThreshold: 250,
		Buffs:         progression.BuffSummary{XPMultiplier: 1.5, StreakProtection: true},
		StreakDecayed: true,
	}
	out := RenderStatus(st)
	assert.Contains(t, out, "alice & bob")
	assert.Contains(t, out, "130 to level 3")
	assert.Contains(t, out, "streak lapsed")
	assert.Contains(t, out, "x1.50 XP")
	assert.Contains(t, out, "streak protection")

	st.NextThreshold = 0
	assert.Contains(t, RenderStatus(st), "max level")
}

func TestRenderCheckIn(t *testing.T) {
	assert.Contains(t, RenderCheckIn(progression.CheckInResult{}), "Already checked in")
	assert.Contains(t, RenderCheckIn(progression.CheckInResult{CheckedIn: true}), "Waiting for your partner")

	out := RenderCheckIn(progression.CheckInResult{
		CheckedIn:     true,
		BothCompleted: true,
		Rewards: &progression.Rewards{
			XP:           25,
			TrustScore:   125,
			Level:        2,
			Streak:       4,
			Item:         &models.TreeItem{Name: "Golden Pear", Rarity: constants.RarityEpic},
			StageChanged: true,
			Stage:        constants.StageSprout,
		},
	})
	assert.Contains(t, out, "+25 XP")
	assert.Contains(t, out, "Streak: 4")
	assert.Contains(t, out, "Found: Golden Pear")
	assert.Contains(t, out, string(constants.StageSprout))
}

func TestRenderTree(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	tree := models.Tree{
		Stage:       constants.StageYoung,
		Inventory:   map[string]int{"maple-leaf": 2, "gone": 0},
		Decorations: []models.Decoration{{ItemID: "maple-leaf", Position: models.Position{X: 40, Y: 60}}},
		GrowthLog:   []models.GrowthEntry{{At: at, Kind: constants.GrowthStage, Message: "Grew"}},
	}
	out := RenderTree(tree, map[string]models.TreeItem{"maple-leaf": {Name: "Maple Leaf"}})
	assert.Contains(t, out, "[0] Maple Leaf at (40, 60)")
	assert.Contains(t, out, "x2 (1 equipped)")
	assert.NotContains(t, out, "gone")
	assert.Contains(t, out, "2026-03-02 09:30")

	empty := RenderTree(models.Tree{Stage: constants.StageSapling}, nil)
	assert.Contains(t, empty, "none")
	assert.Contains(t, empty, "empty")
}

func TestRenderItems(t *testing.T) {
	assert.Equal(t, "No items found.", RenderItems(nil))
	out := RenderItems([]models.TreeItem{{ItemID: "old", Name: "Old", Rarity: constants.RarityCommon}})
	assert.Contains(t, out, "[inactive]")
}

func TestEmit(t *testing.T) {
	var buf bytes.Buffer
	ctx := &Context{Out: &buf}

	require.NoError(t, ctx.Emit(map[string]int{"n": 1}, "one"))
	assert.Equal(t, "one\n", buf.String())

	buf.Reset()
	ctx.JSON = true
	require.NoError(t, ctx.Emit(map[string]int{"n": 1}, "one"))
	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got["n"])
}
