package constants

// Progression tuning. These values decide how fast a duo's tree grows and
// how generous reward rolls are.
const (
	// BaseXP is awarded for every mutual completion before buffs
	BaseXP = 20

	// ItemDropChance is the probability that a mutual completion drops an item
	ItemDropChance = 0.35

	// SlotTolerance is the minimum distance between two decorations
	SlotTolerance = 24.0
)

// LevelThresholds holds the trust score needed for each level, starting at level 1.
var LevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000}

// RarityWeights are relative drop weights; rarer tiers weigh less.
var RarityWeights = map[Rarity]int{
	RarityCommon:    50,
	RarityUncommon:  25,
	RarityRare:      15,
	RarityEpic:      7,
	RarityLegendary: 3,
}

// RarityUnlockLevel is the duo level at which a rarity tier starts dropping.
var RarityUnlockLevel = map[Rarity]int{
	RarityCommon:    1,
	RarityUncommon:  1,
	RarityRare:      3,
	RarityEpic:      5,
	RarityLegendary: 7,
}

// StageCapacity is the number of decorations a tree can hold at each stage.
var StageCapacity = map[Stage]int{
	StageSapling: 0,
	StageSprout:  0,
	StageYoung:   2,
	StageMature:  4,
	StageElder:   6,
}
