package progression

import (
	"fmt"

	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/utils"
)

// StreakResult describes how a mutual completion moved the streak
type StreakResult struct {
	Streak         int
	Previous       int
	Counted        bool // false when the day was already counted
	ProtectionUsed bool
}

// AdvanceStreak records a mutual completion on day (YYYY-MM-DD) and
// updates duo's streak, last completion day and protection week in place.
// protected is true when an equipped decoration grants streak protection.
func AdvanceStreak(duo *models.Duo, day string, protected bool) (StreakResult, error) {
	res := StreakResult{Previous: duo.Streak, Counted: true}

	if duo.LastCompletionDay == "" {
		duo.Streak = 1
		duo.LastCompletionDay = day
		res.Streak = duo.Streak
		return res, nil
	}

	gap, err := utils.DaysBetween(duo.LastCompletionDay, day)
	if err != nil {
		return StreakResult{}, fmt.Errorf("duo %s: %w", duo.ID, err)
	}

	switch {
	case gap <= 0:
		// Already counted, or a clock that went backwards
		res.Counted = false
		res.Streak = duo.Streak
		return res, nil
	case gap == 1:
		duo.Streak++
	case gap == 2 && protected:
		week, err := utils.ISOWeekKeyForDay(day)
		if err != nil {
			return StreakResult{}, err
		}
		if duo.ProtectionWeek == week {
			duo.Streak = 1
			break
		}
		duo.ProtectionWeek = week
		duo.Streak++
		res.ProtectionUsed = true
	default:
		duo.Streak = 1
	}

	duo.LastCompletionDay = day
	res.Streak = duo.Streak
	return res, nil
}

// DecayStreak zeroes a streak that can no longer be continued today: the
// last mutual completion is more than a day back and protection cannot
// bridge the gap. It reports whether the duo changed.
func DecayStreak(duo *models.Duo, today string, protected bool) (bool, error) {
	if duo.Streak == 0 || duo.LastCompletionDay == "" {
		return false, nil
	}

	gap, err := utils.DaysBetween(duo.LastCompletionDay, today)
	if err != nil {
		return false, fmt.Errorf("duo %s: %w", duo.ID, err)
	}
	if gap <= 1 {
		return false, nil
	}
	if gap == 2 && protected {
		week, err := utils.ISOWeekKeyForDay(today)
		if err != nil {
			return false, err
		}
		if duo.ProtectionWeek != week {
			return false, nil
		}
	}

	duo.Streak = 0
	return true, nil
}
