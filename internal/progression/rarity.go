package progression

import (
	"sort"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/models"
)

// Rand is the random source used for reward rolls. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// RarityUnlocked reports whether items of rarity r can drop at level.
func RarityUnlocked(r constants.Rarity, level int) bool {
	unlock, ok := constants.RarityUnlockLevel[r]
	return ok && level >= unlock
}

// EligibleTiers groups the active items that can drop at level by
// rarity. Each group is sorted by ItemID; tiers without items are left out.
func EligibleTiers(level int, items []models.TreeItem) map[constants.Rarity][]models.TreeItem {
	tiers := make(map[constants.Rarity][]models.TreeItem)
	for _, it := range items {
		if !it.IsActive || !RarityUnlocked(it.Rarity, level) {
			continue
		}
		tiers[it.Rarity] = append(tiers[it.Rarity], it)
	}
	for r := range tiers {
		group := tiers[r]
		sort.Slice(group, func(i, j int) bool { return group[i].ItemID < group[j].ItemID })
	}
	return tiers
}

// SelectRarity maps a uniform draw u in [0,1) onto the cumulative weights
// of the given tiers, renormalized to sum to 1. Tiers are visited from
// most to least common. It returns false when tiers is empty.
func SelectRarity(tiers []constants.Rarity, u float64) (constants.Rarity, bool) {
	ordered := make([]constants.Rarity, 0, len(tiers))
	total := 0
	for _, r := range constants.Rarities {
		for _, t := range tiers {
			if t == r {
				ordered = append(ordered, r)
				total += constants.RarityWeights[r]
				break
			}
		}
	}
	if len(ordered) == 0 || total <= 0 {
		return "", false
	}

	// Scale the draw instead of the weights so boundaries stay exact
	target := u * float64(total)
	cumulative := 0
	for _, r := range ordered {
		cumulative += constants.RarityWeights[r]
		if target < float64(cumulative) {
			return r, true
		}
	}
	// u rounding past the last boundary lands in the rarest tier
	return ordered[len(ordered)-1], true
}

// RollItem decides whether an item drops and which one. The drop itself is
// an independent draw against constants.ItemDropChance.
func RollItem(level int, items []models.TreeItem, rng Rand) *models.TreeItem {
	if rng.Float64() >= constants.ItemDropChance {
		return nil
	}

	tiers := EligibleTiers(level, items)
	available := make([]constants.Rarity, 0, len(tiers))
	for r := range tiers {
		available = append(available, r)
	}

	rarity, ok := SelectRarity(available, rng.Float64())
	if !ok {
		return nil
	}
	group := tiers[rarity]
	item := group[rng.IntN(len(group))]
	return &item
}
