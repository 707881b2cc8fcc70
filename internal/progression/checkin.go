package progression

import (
	"context"
	"fmt"

	"github.com/tandrum/tandrum/internal/constants"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/utils"
)

// CheckInResult is the outcome of a check-in. CheckedIn is false when the
// caller had already checked in this period; nothing was written then.
type CheckInResult struct {
	CheckedIn     bool     `json:"checked_in"`
	BothCompleted bool     `json:"both_completed"`
	Rewards       *Rewards `json:"rewards,omitempty"`
}

// CheckIn records a check-in for the user in slot A (userIsA) or slot B.
// When it completes the habit for both users in the current period the
// streak advances, rewards are rolled and the tree is synced, all in the
// same transaction as the check-in itself.
func (e *Engine) CheckIn(ctx context.Context, habitID string, userIsA bool) (CheckInResult, error) {
	var result CheckInResult

	err := e.tx(ctx, func(r storage.Repository) error {
		result = CheckInResult{}

		habit, err := r.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		duo, err := r.GetDuo(ctx, habit.DuoID)
		if err != nil {
			return err
		}

		now := e.now()
		mine, _ := habit.Slots(userIsA)
		if utils.InPeriod(mine, now, habit.Frequency, e.loc) {
			logger.Debug("Check-in already recorded for period", "habit", habit.ID, "userIsA", userIsA)
			return nil
		}

		habit.SetCheckin(userIsA, now)
		habit.UpdatedAt = now
		if err := r.UpdateHabit(ctx, habit); err != nil {
			return err
		}
		result.CheckedIn = true

		_, other := habit.Slots(userIsA)
		if !utils.InPeriod(other, now, habit.Frequency, e.loc) {
			logger.Debug("Check-in recorded", "habit", habit.ID, "userIsA", userIsA)
			return nil
		}
		result.BothCompleted = true

		rewards, err := e.completeHabit(ctx, r, habit, &duo)
		if err != nil {
			return err
		}
		result.Rewards = rewards
		return nil
	})
	if err != nil {
		return CheckInResult{}, err
	}
	return result, nil
}

// completeHabit applies a mutual completion to the duo and its tree.
func (e *Engine) completeHabit(ctx context.Context, r storage.Repository, habit models.Habit, duo *models.Duo) (*Rewards, error) {
	now := e.now()

	tree, err := r.GetTree(ctx, duo.ID)
	if err != nil {
		return nil, err
	}
	catalog, err := catalogIndex(ctx, r)
	if err != nil {
		return nil, err
	}
	active, err := r.ListTreeItems(ctx, false)
	if err != nil {
		return nil, err
	}

	buffs := SummarizeBuffs(tree, catalog)
	streak, err := AdvanceStreak(duo, e.today(now), buffs.StreakProtection)
	if err != nil {
		return nil, err
	}

	roll := RollRewards(LevelForScore(duo.TrustScore), buffs, active, e.rng)
	duo.TrustScore += roll.XP

	entries := []models.GrowthEntry{{
		At:      now,
		Kind:    constants.GrowthCheckin,
		Message: fmt.Sprintf("%q completed together, streak %d", habit.Title, duo.Streak),
	}}

	reward := fmt.Sprintf("+%d XP", roll.XP)
	if roll.Item != nil {
		tree.Inventory[roll.Item.ItemID]++
		switch roll.Item.Category {
		case constants.CategoryFruit:
			tree.Fruits++
		default:
			tree.Leaves++
		}
		reward += fmt.Sprintf(", found %s (%s)", roll.Item.Name, roll.Item.Rarity)
	}
	entries = append(entries, models.GrowthEntry{At: now, Kind: constants.GrowthReward, Message: reward})

	stageEntry := syncStage(&tree, duo.TrustScore, now)
	if stageEntry != nil {
		entries = append(entries, *stageEntry)
	}

	if err := r.UpdateDuo(ctx, *duo); err != nil {
		return nil, err
	}
	if err := r.UpdateTree(ctx, tree); err != nil {
		return nil, err
	}
	if err := r.AppendGrowthLog(ctx, tree.ID, entries...); err != nil {
		return nil, err
	}

	rewards := &Rewards{
		XP:             roll.XP,
		Item:           roll.Item,
		Streak:         duo.Streak,
		ProtectionUsed: streak.ProtectionUsed,
		TrustScore:     duo.TrustScore,
		Level:          LevelForScore(duo.TrustScore),
		Stage:          tree.Stage,
		StageChanged:   stageEntry != nil,
		FocusBonus:     buffs.FocusBonus,
	}

	logger.Info("Habit completed by duo",
		"duo", duo.ID, "habit", habit.ID, "xp", rewards.XP, "streak", rewards.Streak,
		"trust", rewards.TrustScore, "stage", rewards.Stage)
	if roll.Item != nil {
		logger.Info("Item dropped", "duo", duo.ID, "item", roll.Item.ItemID, "rarity", roll.Item.Rarity)
	}
	return rewards, nil
}

// CheckInAs checks in by user name, resolving which slot of the habit's
// duo the user occupies.
func (e *Engine) CheckInAs(ctx context.Context, habitID, user string) (CheckInResult, error) {
	var userIsA bool
	err := e.tx(ctx, func(r storage.Repository) error {
		habit, err := r.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}
		duo, err := r.GetDuo(ctx, habit.DuoID)
		if err != nil {
			return err
		}
		var ok bool
		if userIsA, ok = duo.SlotFor(user); !ok {
			return apperrors.Validation("%q is not a member of duo %s", user, duo.ID)
		}
		return nil
	})
	if err != nil {
		return CheckInResult{}, err
	}
	return e.CheckIn(ctx, habitID, userIsA)
}
