package tournament

import (
	"context"
	"time"
)

// Repository persists tournaments and their participant sets. The
// participant set and the by-participant index are maintained together
// atomically. Soft-deleted tournaments are invisible to every method here.
type Repository interface {
	// Create persists the tournament including its initial participants.
	Create(ctx context.Context, t Tournament) error

	GetByID(ctx context.Context, id string) (Tournament, bool, error)

	// FindByIDPrefix matches ids by case-insensitive prefix, returning at
	// most limit tournaments.
	FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]Tournament, error)

	// AddParticipant is idempotent.
	AddParticipant(ctx context.Context, tournamentID, userID string, joinedAt time.Time) error

	// RemoveParticipant reports whether the user was a participant.
	RemoveParticipant(ctx context.Context, tournamentID, userID string) (bool, error)

	ListByParticipant(ctx context.Context, userID string) ([]Tournament, error)

	ListPublic(ctx context.Context, limit, offset int) ([]Tournament, error)

	SearchPublic(ctx context.Context, query string, limit int) ([]Tournament, error)

	// ListActiveEndedBefore returns active tournaments whose EndDate is
	// strictly before the given date.
	ListActiveEndedBefore(ctx context.Context, date string) ([]Tournament, error)

	// MarkEnded flips the tournament to ended only if it is still active,
	// recording the end time and winner. Returns false when a concurrent
	// caller won the race or the tournament was already ended.
	MarkEnded(ctx context.Context, id string, endedAt time.Time, winnerUserID string) (bool, error)

	// SoftDelete hides the tournament from all reads. Returns false when it
	// does not exist or is already deleted.
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) (bool, error)
}
