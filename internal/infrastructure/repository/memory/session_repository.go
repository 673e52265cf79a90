package memory

import (
	"context"
	"sync"

	"github.com/nate-sepich/par6/internal/domain/user"
)

// SessionRepository is the in-memory session store. Expiry is enforced by
// the caller; expired rows are simply never read again.
type SessionRepository struct {
	mu      sync.RWMutex
	byToken map[string]user.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{byToken: make(map[string]user.Session)}
}

func (r *SessionRepository) Put(_ context.Context, s user.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byToken[s.Token] = s
	return nil
}

func (r *SessionRepository) Get(_ context.Context, token string) (user.Session, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byToken[token]
	return s, ok, nil
}
