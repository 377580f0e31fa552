package auth

import (
	"testing"

	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.New(t.TempDir())
	require.NoError(t, s.Load())
	return s
}

func TestAuthenticate_DefaultAdmin(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(t), "test-jwt-secret")

	admin, err := svc.Authenticate("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(t), "test-jwt-secret")

	_, err := svc.Authenticate("admin", "nope")
	require.Error(t, err)
}

func TestAuthenticate_UnknownUsername(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(t), "test-jwt-secret")

	_, err := svc.Authenticate("root", "admin123")
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewService(newTestStore(t), "test-jwt-secret")

	admin, err := svc.Authenticate("admin", "admin123")
	require.NoError(t, err)

	token, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "admin", claims.Username)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	svc := NewService(st, "test-jwt-secret")
	other := NewService(st, "different-secret")

	admin, err := svc.Authenticate("admin", "admin123")
	require.NoError(t, err)

	token, err := svc.GenerateToken(admin)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}
