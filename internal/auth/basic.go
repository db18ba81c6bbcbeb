package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vyrodovalexey/shoplist/internal/model"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

// UserLookup finds registered users by email.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// BasicAuthenticator authenticates requests using HTTP Basic authentication.
// The username is the user's email and the password is checked against the
// stored bcrypt hash.
type BasicAuthenticator struct {
	users UserLookup
}

// NewBasicAuthenticator creates a Basic authenticator backed by users.
func NewBasicAuthenticator(users UserLookup) (*BasicAuthenticator, error) {
	if users == nil {
		return nil, fmt.Errorf("basic auth: user lookup must not be nil")
	}
	return &BasicAuthenticator{users: users}, nil
}

// Verify checks email and password and returns the matching user.
func (a *BasicAuthenticator) Verify(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrUnauthenticated
	}

	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("basic auth: lookup user: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate extracts Basic auth credentials from the request and verifies them.
func (a *BasicAuthenticator) Authenticate(r *http.Request) (*AuthInfo, error) {
	email, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrUnauthenticated
	}

	user, err := a.Verify(r.Context(), email, password)
	if err != nil {
		return nil, err
	}

	return &AuthInfo{
		Method:  AuthMethodBasic,
		Subject: user.Email,
		UserID:  user.ID,
	}, nil
}

// Method returns the authentication method type.
func (a *BasicAuthenticator) Method() AuthMethod {
	return AuthMethodBasic
}
