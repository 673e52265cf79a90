package user

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, bool, error)
	// GetByHandle looks up by the normalized lower-case handle.
	GetByHandle(ctx context.Context, handleLower string) (User, bool, error)
}

type SessionRepository interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, token string) (Session, bool, error)
}
