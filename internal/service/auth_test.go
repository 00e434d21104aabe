package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/drumfeed/internal/common"
)

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Signup(ctx, "  Ringo ", "starr")
	require.NoError(t, err)
	assert.Equal(t, "ringo", res.User.Username)
	assert.NotEmpty(t, res.Token)

	id, err := env.auth.Identify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, "ringo", id.Username)

	login, err := env.auth.Login(ctx, "RINGO", "starr")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestSignup_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Signup(ctx, " ", "pw")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Username and password are required", err.Error())

	_, err = env.auth.Signup(ctx, "ringo", "pw")
	require.NoError(t, err)
	_, err = env.auth.Signup(ctx, "Ringo", "other")
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "Username already exists", err.Error())
}

func TestLogin_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Signup(ctx, "ringo", "starr")
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, "ringo", "wrong")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Equal(t, "Invalid username or password", err.Error())

	_, err = env.auth.Login(ctx, "nobody", "starr")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Equal(t, "Invalid username or password", err.Error())

	_, err = env.auth.Login(ctx, "ringo", "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestIdentify_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := env.auth.Identify(raw)
		assert.ErrorIs(t, err, common.ErrUnauthenticated, raw)
	}
}
