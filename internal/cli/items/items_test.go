package items

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/cli/clitest"
	apperrors "github.com/tandrum/tandrum/internal/errors"
)

const smallCatalog = `version: 1
items:
  - item_id: maple-leaf
    name: Maple Leaf
    description: Turns red in autumn.
    category: leaf
    rarity: common
    buffs:
      xp_multiplier: 1.1
    is_active: true
  - item_id: golden-pear
    name: Golden Pear
    category: fruit
    rarity: epic
    buffs:
      daily_xp_bonus: 10
    is_active: true
`

func TestSeedBuiltIn(t *testing.T) {
	env := clitest.New(t)

	require.NoError(t, (&ItemsSeedCmd{}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "Seeded")

	err := (&ItemsSeedCmd{}).Run(env.Ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorContains(t, err, "items update")
}

func TestSeedFromFileAndUpdate(t *testing.T) {
	env := clitest.New(t)
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCatalog), 0600))

	require.NoError(t, (&ItemsSeedCmd{File: path}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "Seeded 2 catalog items.")

	bonus := 15
	require.NoError(t, (&ItemsUpdateCmd{ID: "golden-pear", DailyXPBonus: &bonus, Deactivate: true}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "[inactive]")

	item, err := env.Ctx.Engine.GetItem(t.Context(), "golden-pear")
	require.NoError(t, err)
	assert.Equal(t, 15, item.Buffs.DailyXPBonus)
	assert.False(t, item.IsActive)

	require.NoError(t, (&ItemsListCmd{}).Run(env.Ctx))
	out := env.Output()
	assert.Contains(t, out, "maple-leaf")
	assert.NotContains(t, out, "golden-pear")

	require.NoError(t, (&ItemsListCmd{All: true}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "golden-pear")
}

func TestUpdateUnknown(t *testing.T) {
	env := clitest.New(t)
	name := "Ghost"
	err := (&ItemsUpdateCmd{ID: "ghost", Name: &name}).Run(env.Ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
