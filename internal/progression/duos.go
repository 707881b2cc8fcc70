package progression

import (
	"context"
	"fmt"
	"strings"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/logger"
	"github.com/tandrum/tandrum/internal/models"
	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/validation"
)

// CreateDuo pairs two users and plants their tree.
func (e *Engine) CreateDuo(ctx context.Context, user1, user2 string) (models.Duo, models.Tree, error) {
	if err := validation.ValidateDuoUsers(user1, user2); err != nil {
		return models.Duo{}, models.Tree{}, err
	}

	now := e.now()
	duo := models.Duo{
		ID:        e.newID(),
		User1:     strings.TrimSpace(user1),
		User2:     strings.TrimSpace(user2),
		CreatedAt: now,
	}
	tree := models.Tree{
		ID:        e.newID(),
		DuoID:     duo.ID,
		Stage:     constants.StageSapling,
		Inventory: map[string]int{},
		GrowthLog: []models.GrowthEntry{{
			At:      now,
			Kind:    constants.GrowthStage,
			Message: fmt.Sprintf("Planted by %s and %s", duo.User1, duo.User2),
		}},
	}

	err := e.tx(ctx, func(r storage.Repository) error {
		if err := r.AddDuo(ctx, duo); err != nil {
			return err
		}
		return r.AddTree(ctx, tree)
	})
	if err != nil {
		return models.Duo{}, models.Tree{}, err
	}

	logger.Info("Duo created", "duo", duo.ID)
	return duo, tree, nil
}

// DuoStatus is a read model of a duo's progression
type DuoStatus struct {
	Duo           models.Duo  `json:"duo"`
	Tree          models.Tree `json:"tree"`
	Level         int         `json:"level"`
	NextThreshold int         `json:"next_threshold,omitempty"` // 0 at the top level
	Capacity      int         `json:"capacity"`
	Buffs         BuffSummary `json:"buffs"`
	StreakDecayed bool        `json:"streak_decayed,omitempty"`
}

// DuoStatus loads a duo and its tree. A streak that can no longer continue
// is reset to 0 and a lagging tree stage is corrected, both persisted.
func (e *Engine) DuoStatus(ctx context.Context, duoID string) (DuoStatus, error) {
	var st DuoStatus
	err := e.tx(ctx, func(r storage.Repository) error {
		duo, err := r.GetDuo(ctx, duoID)
		if err != nil {
			return err
		}
		tree, err := r.GetTree(ctx, duoID)
		if err != nil {
			return err
		}
		catalog, err := catalogIndex(ctx, r)
		if err != nil {
			return err
		}

		now := e.now()
		buffs := SummarizeBuffs(tree, catalog)

		decayed, err := DecayStreak(&duo, e.today(now), buffs.StreakProtection)
		if err != nil {
			return err
		}
		if decayed {
			if err := r.UpdateDuo(ctx, duo); err != nil {
				return err
			}
			logger.Info("Streak lapsed", "duo", duo.ID, "last", duo.LastCompletionDay)
		}

		if entry := syncStage(&tree, duo.TrustScore, now); entry != nil {
			if err := r.UpdateTree(ctx, tree); err != nil {
				return err
			}
			if err := r.AppendGrowthLog(ctx, tree.ID, *entry); err != nil {
				return err
			}
			tree.GrowthLog = append(tree.GrowthLog, *entry)
		}

		level := LevelForScore(duo.TrustScore)
		next, _ := NextThreshold(level)
		st = DuoStatus{
			Duo:           duo,
			Tree:          tree,
			Level:         level,
			NextThreshold: next,
			Capacity:      Capacity(tree.Stage),
			Buffs:         buffs,
			StreakDecayed: decayed,
		}
		return nil
	})
	if err != nil {
		return DuoStatus{}, err
	}
	return st, nil
}

// GetDuo loads a duo as stored, without the streak decay DuoStatus applies.
func (e *Engine) GetDuo(ctx context.Context, duoID string) (models.Duo, error) {
	var duo models.Duo
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		duo, err = r.GetDuo(ctx, duoID)
		return err
	})
	return duo, err
}

// ListDuos returns every duo, oldest first.
func (e *Engine) ListDuos(ctx context.Context) ([]models.Duo, error) {
	var duos []models.Duo
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		duos, err = r.ListDuos(ctx)
		return err
	})
	return duos, err
}

// AdjustTrustScore is an admin correction. The score is clamped at 0 and
// the tree keeps any stage it already reached.
func (e *Engine) AdjustTrustScore(ctx context.Context, duoID string, delta int, reason string) (models.Duo, error) {
	var duo models.Duo
	err := e.tx(ctx, func(r storage.Repository) error {
		var err error
		duo, err = r.GetDuo(ctx, duoID)
		if err != nil {
			return err
		}
		tree, err := r.GetTree(ctx, duoID)
		if err != nil {
			return err
		}

		before := duo.TrustScore
		duo.TrustScore = max(0, duo.TrustScore+delta)
		if err := r.UpdateDuo(ctx, duo); err != nil {
			return err
		}

		now := e.now()
		msg := fmt.Sprintf("Trust score adjusted %d -> %d", before, duo.TrustScore)
		if reason = strings.TrimSpace(reason); reason != "" {
			msg += ": " + reason
		}
		entries := []models.GrowthEntry{{At: now, Kind: constants.GrowthAdmin, Message: msg}}
		if entry := syncStage(&tree, duo.TrustScore, now); entry != nil {
			if err := r.UpdateTree(ctx, tree); err != nil {
				return err
			}
			entries = append(entries, *entry)
		}

		logger.Warn("Trust score adjusted", "duo", duoID, "from", before, "to", duo.TrustScore)
		return r.AppendGrowthLog(ctx, tree.ID, entries...)
	})
	if err != nil {
		return models.Duo{}, err
	}
	return duo, nil
}
