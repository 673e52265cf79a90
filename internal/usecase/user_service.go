package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nate-sepich/par6/internal/domain/user"
	"github.com/nate-sepich/par6/internal/platform/id"
	"github.com/nate-sepich/par6/internal/platform/logging"
)

const (
	handleMinLen = 3
	handleMaxLen = 24
)

// UserService handles registration and session verification. Registering an
// existing handle logs that user in instead of failing, so the client flow
// is a single call either way.
type UserService struct {
	users    user.Repository
	sessions user.SessionRepository
	idGen    id.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewUserService(
	users user.Repository,
	sessions user.SessionRepository,
	idGen id.Generator,
	logger *logging.Logger,
	now func() time.Time,
) *UserService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:    users,
		sessions: sessions,
		idGen:    idGen,
		logger:   logger,
		now:      now,
	}
}

// RegisterResult carries the user plus a fresh session token.
type RegisterResult struct {
	User         user.User
	SessionToken string
	ExpiresAt    time.Time
	Created      bool
}

func (s *UserService) Register(ctx context.Context, handle string) (RegisterResult, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.Register")
	defer span.End()

	handle = strings.TrimSpace(handle)
	if len(handle) < handleMinLen || len(handle) > handleMaxLen {
		return RegisterResult{}, fmt.Errorf("%w: handle must be %d-%d characters", ErrInvalidInput, handleMinLen, handleMaxLen)
	}
	handleLower := strings.ToLower(handle)

	existing, found, err := s.users.GetByHandle(ctx, handleLower)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("lookup handle: %w", err)
	}

	u := existing
	if !found {
		newID, err := s.idGen.NewID()
		if err != nil {
			return RegisterResult{}, fmt.Errorf("generate user id: %w", err)
		}
		u = user.User{
			ID:          newID,
			Handle:      handle,
			HandleLower: handleLower,
			CreatedAt:   s.now().UTC(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return RegisterResult{}, fmt.Errorf("create user: %w", err)
		}
		s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	} else {
		s.logger.InfoContext(ctx, "user logged in", "user_id", u.ID)
	}

	sess, err := s.issueSession(ctx, u.ID)
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{
		User:         u,
		SessionToken: sess.Token,
		ExpiresAt:    sess.ExpiresAt,
		Created:      !found,
	}, nil
}

// VerifySession resolves a bearer token to a Principal. Unknown and expired
// tokens are indistinguishable to the caller.
func (s *UserService) VerifySession(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: missing session token", ErrUnauthorized)
	}

	sess, found, err := s.sessions.Get(ctx, token)
	if err != nil {
		return user.Principal{}, fmt.Errorf("lookup session: %w", err)
	}
	if !found || s.now().UTC().After(sess.ExpiresAt) {
		return user.Principal{}, fmt.Errorf("%w: invalid or expired session", ErrUnauthorized)
	}

	u, found, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("lookup session user: %w", err)
	}
	if !found {
		return user.Principal{}, fmt.Errorf("%w: session user no longer exists", ErrUnauthorized)
	}

	return user.Principal{UserID: u.ID, Handle: u.Handle}, nil
}

func (s *UserService) issueSession(ctx context.Context, userID string) (user.Session, error) {
	token, err := s.idGen.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now().UTC()
	sess := user.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(user.SessionTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return user.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}
