// Package session remembers which user is logged in to the CLI.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/shoplist/internal/localstore"
	"github.com/vyrodovalexey/shoplist/internal/model"
)

// Key is the local store key holding the session.
const Key = "userInfo"

// ErrNotLoggedIn is returned by Load when no session is saved.
var ErrNotLoggedIn = errors.New("not logged in")

// Info is the saved profile of the logged-in user.
type Info struct {
	model.User
	LoginTime time.Time `json:"loginTime"`
}

// Manager reads and writes the session entry.
type Manager struct {
	store *localstore.Store
	now   func() time.Time
}

// NewManager creates a Manager backed by store.
func NewManager(store *localstore.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Save records user as logged in now.
func (m *Manager) Save(ctx context.Context, user model.User) (Info, error) {
	info := Info{User: user, LoginTime: m.now().UTC()}
	if err := m.store.Set(ctx, Key, info); err != nil {
		return Info{}, fmt.Errorf("save session: %w", err)
	}
	return info, nil
}

// Update replaces the saved profile and keeps the original login time.
func (m *Manager) Update(ctx context.Context, user model.User) (Info, error) {
	info, err := m.Load(ctx)
	if err != nil {
		return Info{}, err
	}

	info.User = user
	if err := m.store.Set(ctx, Key, info); err != nil {
		return Info{}, fmt.Errorf("update session: %w", err)
	}
	return info, nil
}

// Load returns the saved session, or ErrNotLoggedIn.
func (m *Manager) Load(ctx context.Context) (Info, error) {
	var info Info
	err := m.store.Get(ctx, Key, &info)
	if errors.Is(err, localstore.ErrNotFound) {
		return Info{}, ErrNotLoggedIn
	}
	if err != nil {
		return Info{}, fmt.Errorf("load session: %w", err)
	}
	return info, nil
}

// Clear forgets the session.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
