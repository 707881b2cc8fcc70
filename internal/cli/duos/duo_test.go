package duos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tandrum/tandrum/internal/cli/clitest"
	apperrors "github.com/tandrum/tandrum/internal/errors"
	"github.com/tandrum/tandrum/internal/models"
)

func createDuo(t *testing.T, env *clitest.Env) models.Duo {
	t.Helper()
	env.Ctx.JSON = true
	require.NoError(t, (&DuoCreateCmd{User1: "alice", User2: "bob"}).Run(env.Ctx))
	env.Ctx.JSON = false

	var created struct {
		Duo models.Duo `json:"duo"`
	}
	require.NoError(t, json.Unmarshal([]byte(env.Output()), &created))
	return created.Duo
}

func TestDuoLifecycle(t *testing.T) {
	env := clitest.New(t)
	duo := createDuo(t, env)
	assert.Equal(t, "alice", duo.User1)

	require.NoError(t, (&DuoShowCmd{ID: duo.ID}).Run(env.Ctx))
	out := env.Output()
	assert.Contains(t, out, "alice & bob")
	assert.Contains(t, out, "tree-1")
	assert.Contains(t, out, "100 to level 2")

	require.NoError(t, (&DuoAdjustCmd{ID: duo.ID, Delta: 260, Reason: "imported"}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "now 260")

	require.NoError(t, (&DuoShowCmd{ID: duo.ID}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "tree-1.5")

	require.NoError(t, (&DuoListCmd{}).Run(env.Ctx))
	assert.Contains(t, env.Output(), duo.ID)
}

func TestDuoCreateRejectsSameUser(t *testing.T) {
	env := clitest.New(t)
	err := (&DuoCreateCmd{User1: "alice", User2: "alice"}).Run(env.Ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDuoShowUnknown(t *testing.T) {
	env := clitest.New(t)
	err := (&DuoShowCmd{ID: "nope"}).Run(env.Ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDuoListEmpty(t *testing.T) {
	env := clitest.New(t)
	require.NoError(t, (&DuoListCmd{}).Run(env.Ctx))
	assert.Contains(t, env.Output(), "No duos found.")
}
