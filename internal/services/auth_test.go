package services_test

import (
	"testing"

	"github.com/extrange/mcq-bot/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	return services.NewAuthService(newTestDB(t), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuthService(t)

	token, err := auth.Register("admin", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	token, err = auth.Login("admin", "hunter22")
	require.NoError(t, err)

	adminID, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, adminID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	auth := newAuthService(t)

	_, err := auth.Register("admin", "hunter22")
	require.NoError(t, err)

	_, err = auth.Register("admin", "other")
	assert.EqualError(t, err, "username already taken")
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := newAuthService(t)

	_, err := auth.Register("admin", "hunter22")
	require.NoError(t, err)

	_, err = auth.Login("admin", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, err = auth.Login("nobody", "hunter22")
	assert.EqualError(t, err, "invalid credentials")
}

func TestValidateToken_Garbage(t *testing.T) {
	auth := newAuthService(t)

	_, err := auth.ValidateToken("not.a.token")
	assert.Error(t, err)

	other := services.NewAuthService(newTestDB(t), "different-secret")
	token, err := other.GenerateToken(1)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err, "tokens signed with another secret are rejected")
}
