package progression

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
)

func TestSelectRarityBoundaries(t *testing.T) {
	all := constants.Rarities
	tests := []struct {
		u    float64
		want constants.Rarity
	}{
		{0, constants.RarityCommon},
		{0.4999, constants.RarityCommon},
		{0.5, constants.RarityUncommon},
		{0.7499, constants.RarityUncommon},
		{0.75, constants.RarityRare},
		{0.8999, constants.RarityRare},
		{0.9001, constants.RarityEpic},
		{0.9699, constants.RarityEpic},
		{0.9701, constants.RarityLegendary},
		{0.99999, constants.RarityLegendary},
	}
	for _, tt := range tests {
		got, ok := SelectRarity(all, tt.u)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, "u=%v", tt.u)
	}
}

func TestSelectRarityRenormalizes(t *testing.T) {
	// common 50 and rare 15 only: common covers 50/65 of the range
	tiers := []constants.Rarity{constants.RarityRare, constants.RarityCommon}
	got, _ := SelectRarity(tiers, 0.76)
	assert.Equal(t, constants.RarityCommon, got)
	got, _ = SelectRarity(tiers, 0.77)
	assert.Equal(t, constants.RarityRare, got)

	_, ok := SelectRarity(nil, 0.5)
	assert.False(t, ok)
}

func TestSelectRarityDistribution(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1024))
	const samples = 100_000

	counts := make(map[constants.Rarity]int)
	for i := 0; i < samples; i++ {
		r, ok := SelectRarity(constants.Rarities, rng.Float64())
		require.True(t, ok)
		counts[r]++
	}

	total := 0
	for _, w := range constants.RarityWeights {
		total += w
	}
	for _, r := range constants.Rarities {
		want := float64(constants.RarityWeights[r]) / float64(total)
		got := float64(counts[r]) / samples
		assert.InDelta(t, want, got, 0.01, "rarity %s", r)
	}
	for i := 1; i < len(constants.Rarities); i++ {
		assert.Greater(t, counts[constants.Rarities[i-1]], counts[constants.Rarities[i]],
			"%s should drop more often than %s", constants.Rarities[i-1], constants.Rarities[i])
	}
}

func TestRarityWeightsSumToOneAfterNormalization(t *testing.T) {
	sum := 0.0
	total := 0
	for _, w := range constants.RarityWeights {
		total += w
	}
	for _, w := range constants.RarityWeights {
		sum += float64(w) / float64(total)
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestEligibleTiers(t *testing.T) {
	tiers := EligibleTiers(1, testItems)
	assert.Len(t, tiers, 2, "level 1 unlocks common and uncommon only")
	require.Len(t, tiers[constants.RarityCommon], 2, "inactive items never drop")
	assert.Equal(t, "apple", tiers[constants.RarityCommon][0].ItemID)
	assert.Equal(t, "oak-leaf", tiers[constants.RarityCommon][1].ItemID)

	tiers = EligibleTiers(7, testItems)
	assert.Contains(t, tiers, constants.RarityLegendary)
	assert.NotContains(t, tiers, constants.RarityRare, "tiers without items are skipped")
}

func TestRollItem(t *testing.T) {
	t.Run("no drop", func(t *testing.T) {
		rng := &scriptedRand{floats: []float64{constants.ItemDropChance}}
		assert.Nil(t, RollItem(10, testItems, rng))
	})

	t.Run("common drop picks by index", func(t *testing.T) {
		rng := &scriptedRand{floats: []float64{0.1, 0.2}, ints: []int{1}}
		item := RollItem(1, testItems, rng)
		require.NotNil(t, item)
		assert.Equal(t, "oak-leaf", item.ItemID)
	})

	t.Run("locked tier is never rolled", func(t *testing.T) {
		// 0.999 lands in the rarest eligible tier, which at level 1 is uncommon
		rng := &scriptedRand{floats: []float64{0.1, 0.999}}
		item := RollItem(1, testItems, rng)
		require.NotNil(t, item)
		assert.Equal(t, "shield-leaf", item.ItemID)
	})

	t.Run("legendary at high level", func(t *testing.T) {
		rng := &scriptedRand{floats: []float64{0.1, 0.999}}
		item := RollItem(7, testItems, rng)
		require.NotNil(t, item)
		assert.Equal(t, "star-fruit", item.ItemID)
	})

	t.Run("empty catalog", func(t *testing.T) {
		rng := &scriptedRand{floats: []float64{0.0, 0.0}}
		assert.Nil(t, RollItem(10, []models.TreeItem{}, rng))
	})
}

func TestDropRate(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	const samples = 50_000
	drops := 0
	for i := 0; i < samples; i++ {
		if RollItem(10, testItems, rng) != nil {
			drops++
		}
	}
	got := float64(drops) / samples
	assert.LessOrEqual(t, math.Abs(got-constants.ItemDropChance), 0.01)
}
