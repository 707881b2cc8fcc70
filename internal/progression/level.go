package progression

import "github.com/tandrum/tandrum/internal/constants"

// LevelForScore maps a trust score to a level, starting at 1.
func LevelForScore(score int) int {
	level := 1
	for i, threshold := range constants.LevelThresholds {
		if score >= threshold {
			level = i + 1
		}
	}
	return level
}

// NextThreshold returns the trust score needed for the level after level.
// ok is false at the top level.
func NextThreshold(level int) (score int, ok bool) {
	if level < 1 || level >= len(constants.LevelThresholds) {
		return 0, false
	}
	return constants.LevelThresholds[level], true
}

// StageForLevel maps a level to the tree stage it implies.
func StageForLevel(level int) constants.Stage {
	switch {
	case level >= 8:
		return constants.StageElder
	case level >= 6:
		return constants.StageMature
	case level >= 4:
		return constants.StageYoung
	case level == 3:
		return constants.StageSprout
	default:
		return constants.StageSapling
	}
}

// StageForScore is StageForLevel(LevelForScore(score)).
func StageForScore(score int) constants.Stage {
	return StageForLevel(LevelForScore(score))
}

// Capacity is how many decorations a tree at stage can hold.
func Capacity(stage constants.Stage) int {
	return constants.StageCapacity[stage]
}

// EffectiveStage is the later of the stored and implied stages; a tree
// never shrinks.
func EffectiveStage(stored, implied constants.Stage) constants.Stage {
	if stored.Index() >= implied.Index() {
		return stored
	}
	return implied
}
