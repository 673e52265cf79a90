package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nate-sepich/par6/internal/domain/user"
)

func TestUserService_RegisterCreatesNewUser(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	res, err := env.userSvc.Register(context.Background(), "CaddyMaster")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !res.Created {
		t.Fatalf("expected a new user")
	}
	if res.User.Handle != "CaddyMaster" {
		t.Fatalf("unexpected handle: %q", res.User.Handle)
	}
	if res.SessionToken == "" {
		t.Fatalf("expected a session token")
	}
	wantExpiry := env.clock.Now().UTC().Add(user.SessionTTL)
	if !res.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("unexpected expiry: got %v want %v", res.ExpiresAt, wantExpiry)
	}
}

func TestUserService_RegisterExistingHandleLogsIn(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	first, err := env.userSvc.Register(context.Background(), "caddymaster")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Same handle, different casing: must resolve to the same user.
	second, err := env.userSvc.Register(context.Background(), "CADDYMASTER")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if second.Created {
		t.Fatalf("expected login, not creation")
	}
	if second.User.ID != first.User.ID {
		t.Fatalf("expected same user id, got %s and %s", first.User.ID, second.User.ID)
	}
	if second.SessionToken == first.SessionToken {
		t.Fatalf("expected a fresh session token per login")
	}
}

func TestUserService_RegisterValidatesHandleLength(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	for _, handle := range []string{"", "ab", "  x ", "this-handle-is-way-too-long-to-pass"} {
		if _, err := env.userSvc.Register(context.Background(), handle); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for handle %q, got %v", handle, err)
		}
	}
}

func TestUserService_VerifySession(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	res, err := env.userSvc.Register(context.Background(), "putter")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	principal, err := env.userSvc.VerifySession(context.Background(), res.SessionToken)
	if err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if principal.UserID != res.User.ID || principal.Handle != "putter" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := env.userSvc.VerifySession(context.Background(), "no-such-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown token, got %v", err)
	}
	if _, err := env.userSvc.VerifySession(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestUserService_VerifySessionExpires(t *testing.T) {
	t.Parallel()
	env := newTestEnv()

	res, err := env.userSvc.Register(context.Background(), "putter")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	env.clock.Advance(user.SessionTTL + time.Minute)

	if _, err := env.userSvc.VerifySession(context.Background(), res.SessionToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}
}
