package progression

import (
	"context"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/utils"
	"github.com/tandrum/tandrum/internal/validation"
)

// CreateHabit adds a habit to a duo. Titles are unique per duo ignoring case.
func (e *Engine) CreateHabit(ctx context.Context, duoID, title string, freq constants.Frequency) (models.Habit, error) {
	if err := validation.ValidateHabitTitle(title); err != nil {
		return models.Habit{}, err
	}
	if err := validation.ValidateFrequency(freq); err != nil {
		return models.Habit{}, err
	}

	now := e.now()
	habit := models.Habit{
		ID:        e.newID(),
		DuoID:     duoID,
		Title:     validation.NormalizeTitle(title),
		TitleKey:  validation.TitleKey(title),
		Frequency: freq,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := e.tx(ctx, func(r storage.Repository) error {
		if _, err := r.GetDuo(ctx, duoID); err != nil {
			return err
		}
		existing, err := r.ListHabitsForDuo(ctx, duoID)
		if err != nil {
			return err
		}
		if err := validation.ValidateUniqueTitle(existing, title, ""); err != nil {
			return err
		}
		return r.AddHabit(ctx, habit)
	})
	if err != nil {
		return models.Habit{}, err
	}

	logger.Info("Habit created", "duo", duoID, "habit", habit.ID, "frequency", freq)
	return habit, nil
}

// HabitUpdate lists the fields to change; nil fields are left alone
type HabitUpdate struct {
	Title     *string
	Frequency *constants.Frequency
}

// UpdateHabit edits a habit. Changing the frequency clears both users'
// check-ins for the habit.
func (e *Engine) UpdateHabit(ctx context.Context, habitID string, upd HabitUpdate) (models.Habit, error) {
	if upd.Title != nil {
		if err := validation.ValidateHabitTitle(*upd.Title); err != nil {
			return models.Habit{}, err
		}
	}
	if upd.Frequency != nil {
		if err := validation.ValidateFrequency(*upd.Frequency); err != nil {
			return models.Habit{}, err
		}
	}

	var habit models.Habit
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		habit, err = r.GetHabit(ctx, habitID)
		if err != nil {
			return err
		}

		if upd.Title != nil {
			existing, err := r.ListHabitsForDuo(ctx, habit.DuoID)
			if err != nil {
				return err
			}
			if err := validation.ValidateUniqueTitle(existing, *upd.Title, habit.ID); err != nil {
				return err
			}
			habit.Title = validation.NormalizeTitle(*upd.Title)
			habit.TitleKey = validation.TitleKey(*upd.Title)
		}
		if upd.Frequency != nil && *upd.Frequency != habit.Frequency {
			habit.Frequency = *upd.Frequency
			habit.ClearCheckins()
			logger.Info("Habit frequency changed, check-ins cleared", "habit", habit.ID, "frequency", habit.Frequency)
		}

		habit.UpdatedAt = e.now()
		return r.UpdateHabit(ctx, habit)
	})
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// HabitStatus is a habit with each user's completion for the current period
type HabitStatus struct {
	models.Habit
	DoneA bool `json:"done_a"`
	DoneB bool `json:"done_b"`
}

// Both reports whether the habit is complete for the duo this period.
func (s HabitStatus) Both() bool {
	return s.DoneA && s.DoneB
}

// ListHabits returns the duo's habits with their period completion flags.
func (e *Engine) ListHabits(ctx context.Context, duoID string) ([]HabitStatus, error) {
	var out []HabitStatus
	err := e.tx(ctx, func(r storage.Repository) error {
		if _, err := r.GetDuo(ctx, duoID); err != nil {
			return err
		}
		habits, err := r.ListHabitsForDuo(ctx, duoID)
		if err != nil {
			return err
		}

		now := e.now()
		out = make([]HabitStatus, 0, len(habits))
		for _, h := range habits {
			out = append(out, HabitStatus{
				Habit: h,
				DoneA: utils.InPeriod(h.LastCheckinA, now, h.Frequency, e.loc),
				DoneB: utils.InPeriod(h.LastCheckinB, now, h.Frequency, e.loc),
			})
		}
		return nil
	})
	return out, err
}

// GetHabit loads one habit.
func (e *Engine) GetHabit(ctx context.Context, habitID string) (models.Habit, error) {
	var habit models.Habit
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		habit, err = r.GetHabit(ctx, habitID)
		return err
	})
	return habit, err
}
