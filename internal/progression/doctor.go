package progression

import (
	"context"

	"github.com/tandrum/tandrum/internal/storage"
	"github.com/tandrum/tandrum/internal/validation"
)

// Check runs the integrity validator over every duo without changing
// anything.
func (e *Engine) Check(ctx context.Context) (validation.ValidationResult, error) {
	result := validation.ValidationResult{Conflicts: []validation.Conflict{}}
	v := validation.New()

	err := e.tx(ctx, func(r storage.Repository) error {
		catalog, err := catalogIndex(ctx, r)
		if err != nil {
			return err
		}
		duos, err := r.ListDuos(ctx)
		if err != nil {
			return err
		}
		for _, duo := range duos {
			tree, err := r.GetTree(ctx, duo.ID)
			if err != nil {
				return err
			}
			habits, err := r.ListHabitsForDuo(ctx, duo.ID)
			if err != nil {
				return err
			}
			res := v.ValidateDuo(duo, tree, habits, StageForScore(duo.TrustScore), catalog)
			result.Conflicts = append(result.Conflicts, res.Conflicts...)
		}
		return nil
	})
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return result, nil
}
