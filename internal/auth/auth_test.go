package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/model"
	"machine-loan-backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	svc := New(st, cfg, zap.NewNop())
	require.NoError(t, svc.Bootstrap())
	return svc, st
}

func TestBootstrap_CreatesAdminOnce(t *testing.T) {
	svc, st := newTestService(t)

	accounts := st.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "admin", accounts[0].Username)
	assert.Equal(t, model.RoleAdmin, accounts[0].Role)
	assert.NotEqual(t, "admin123", accounts[0].PasswordHash, "the password must be stored hashed")

	// A second bootstrap over a populated table is a no-op.
	require.NoError(t, svc.Bootstrap())
	assert.Len(t, st.Accounts(), 1)
}

func TestLogin(t *testing.T) {
	svc, st := newTestService(t)

	token, account, err := svc.Login("admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "admin", account.Username)
	assert.False(t, account.LastAccess.IsZero(), "login records the access time")
	assert.False(t, st.Accounts()[0].LastAccess.IsZero())

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login("nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken_RejectsTamperedAndExpired(t *testing.T) {
	svc, _ := newTestService(t)

	token, _, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token + "x")
	assert.Error(t, err)

	// Issue a token that is already past its TTL.
	svc.now = func() time.Time { return time.Now().Add(-2 * svc.cfg.Auth.TokenTTL) }
	expired, _, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyToken(expired)
	assert.Error(t, err)
}
