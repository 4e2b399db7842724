package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/sah-lishi/backend-journey/internal/models"
	"github.com/sah-lishi/backend-journey/internal/repositories"
)

// NewInMemoryIdentityStore returns an IdentityStore backed by an in-memory map.
func NewInMemoryIdentityStore() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{users: make(map[string]models.User)}
}

// InMemoryIdentityStore implements IdentityStore for tests and local development.
type InMemoryIdentityStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Put inserts or replaces a user record.
func (s *InMemoryIdentityStore) Put(user models.User) {
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
}

// FindByLogin matches identifier against username or email.
func (s *InMemoryIdentityStore) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Username, identifier) || strings.EqualFold(user.Email, identifier) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

// FindByID retrieves a user by id.
func (s *InMemoryIdentityStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	user, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

// SetRefreshToken overwrites the stored rotation token.
func (s *InMemoryIdentityStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

// SwapRefreshToken replaces current with next only when current is still stored.
func (s *InMemoryIdentityStore) SwapRefreshToken(_ context.Context, userID, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	if user.RefreshToken != current {
		return repositories.ErrStaleValue
	}
	user.RefreshToken = next
	s.users[userID] = user
	return nil
}

// ClearRefreshToken removes the stored rotation token.
func (s *InMemoryIdentityStore) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.SetRefreshToken(ctx, userID, "")
}

// RefreshToken reports the stored rotation token. Useful for tests.
func (s *InMemoryIdentityStore) RefreshToken(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID].RefreshToken
}
