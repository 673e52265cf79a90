package user

import "time"

// SessionTTL is how long a login session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// User is a registered player. Handle is unique case-insensitively;
// HandleLower carries the normalized form used for lookups.
type User struct {
	ID          string
	Handle      string
	HandleLower string
	CreatedAt   time.Time
}

// Session is an opaque bearer token bound to one user.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID string
	Handle string
}
