package score

import "context"

// Repository persists the score ledger. Date range arguments are inclusive
// canonical DateLayout strings.
type Repository interface {
	// GetByUserAndDate returns the score for one user on one puzzle date.
	GetByUserAndDate(ctx context.Context, userID, puzzleDate string) (Score, bool, error)

	// Upsert writes the score, replacing any existing row for the same
	// (UserID, PuzzleDate) pair atomically.
	Upsert(ctx context.Context, s Score) error

	// InsertIfAbsent inserts only when no score exists for the pair yet.
	// Returns true when a row was written.
	InsertIfAbsent(ctx context.Context, s Score) (bool, error)

	// ListByUserInRange returns one user's scores ordered by puzzle date
	// ascending.
	ListByUserInRange(ctx context.Context, userID, startDate, endDate string) ([]Score, error)

	// ListInRange returns all scores in the range across users.
	ListInRange(ctx context.Context, startDate, endDate string) ([]Score, error)
}
