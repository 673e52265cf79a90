package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nate-sepich/par6/internal/domain/user"
)

// UserRepository is the in-memory user store, keyed by id with a secondary
// index on the normalized handle.
type UserRepository struct {
	mu       sync.RWMutex
	byID     map[string]user.User
	byHandle map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:     make(map[string]user.User),
		byHandle: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; exists {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	if _, exists := r.byHandle[u.HandleLower]; exists {
		return fmt.Errorf("handle %s already taken", u.HandleLower)
	}
	r.byID[u.ID] = u
	r.byHandle[u.HandleLower] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	return u, ok, nil
}

func (r *UserRepository) GetByHandle(_ context.Context, handleLower string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byHandle[handleLower]
	if !ok {
		return user.User{}, false, nil
	}
	u, ok := r.byID[id]
	return u, ok, nil
}
