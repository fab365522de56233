package auth

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubUserStore struct {
	users map[string]*User
}

func (s *stubUserStore) GetByUsername(_ context.Context, username string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func newTestVerifier(t *testing.T) (*Verifier, string) {
	t.Helper()

	password := "s3cret-password"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	store := &stubUserStore{users: map[string]*User{
		"mrodriguez": {
			ID:           42,
			Username:     "mrodriguez",
			PasswordHash: string(hash),
			Nombre:       "María Rodríguez",
			Estado:       "A",
		},
		// Hash padded with trailing spaces, as the legacy CHAR column stores it
		"legacy": {
			ID:           7,
			Username:     "legacy",
			PasswordHash: string(hash) + "   ",
			Nombre:       "Legacy User",
			Estado:       "A",
		},
	}}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewVerifier(store, logger), password
}

func TestVerifier_Verify_Success(t *testing.T) {
	verifier, password := newTestVerifier(t)

	identity, err := verifier.Verify(context.Background(), "mrodriguez", password)

	require.NoError(t, err)
	assert.Equal(t, Identity{ID: 42, Username: "mrodriguez"}, identity)
}

func TestVerifier_Verify_TrimsLegacyHashPadding(t *testing.T) {
	verifier, password := newTestVerifier(t)

	identity, err := verifier.Verify(context.Background(), "legacy", password)

	require.NoError(t, err)
	assert.Equal(t, 7, identity.ID)
}

func TestVerifier_Verify_FailuresAreIndistinguishable(t *testing.T) {
	verifier, _ := newTestVerifier(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "whatever"},
		{"wrong password", "mrodriguez", "wrong-password"},
		{"empty password", "mrodriguez", ""},
		// Inactive accounts are filtered in the store lookup, so they
		// surface here exactly like unknown users
		{"inactive user", "disabled", "s3cret-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := verifier.Verify(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Zero(t, identity)
		})
	}
}
