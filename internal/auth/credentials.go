// Package auth implements the two authentication legs of the request
// pipeline: verifying submitted credentials at login, and issuing/parsing the
// signed tokens every later request presents.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is the single failure every bad login collapses into.
// Callers must not be able to tell an unknown or inactive user apart from a
// wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUserNotFound is returned by UserStore when no active account matches.
var ErrUserNotFound = errors.New("user not found")

// Identity is the authenticated caller, derived once at login and re-derived
// from the token on every request. Immutable for the token's lifetime.
type Identity struct {
	ID       int
	Username string
}

// User is an account row as the store returns it.
type User struct {
	ID           int
	Username     string
	PasswordHash string
	Nombre       string
	Estado       string
}

// UserStore looks up active accounts by username. Inactive accounts must not
// be returned; filtering on estado is the store's job.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Verifier checks submitted credentials against the stored bcrypt hash.
type Verifier struct {
	users  UserStore
	logger *logrus.Logger
}

func NewVerifier(users UserStore, logger *logrus.Logger) *Verifier {
	return &Verifier{users: users, logger: logger}
}

// Verify returns the caller's identity when username and password match an
// active account, ErrInvalidCredentials otherwise.
func (v *Verifier) Verify(ctx context.Context, username, password string) (Identity, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, err
	}

	// The legacy CHAR column pads hashes with trailing spaces.
	hash := strings.TrimSpace(user.PasswordHash)

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		v.logger.WithField("username", username).Warn("Password mismatch")
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{ID: user.ID, Username: user.Username}, nil
}
