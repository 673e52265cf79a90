package score

import (
	"fmt"
	"time"
)

// DateLayout is the canonical puzzle-date format. Puzzle dates are calendar
// days, never instants, so they travel as strings end to end.
const DateLayout = "2006-01-02"

// Status tells whether the puzzle was solved or abandoned.
type Status string

const (
	StatusSolved Status = "solved"
	StatusDNF    Status = "dnf"
)

// Type separates player submissions from batch-inserted penalties.
type Type string

const (
	TypeRegular Type = "regular"
	TypePenalty Type = "penalty"
)

// Score is one row of the ledger: a single result for one user on one
// puzzle date. The (UserID, PuzzleDate) pair is unique; resubmission
// overwrites in place.
type Score struct {
	ID          string
	UserID      string
	PuzzleDate  string
	Status      Status
	GuessesUsed *int
	GolfScore   int
	SourceText  string
	Type        Type
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LeaderboardEntry is a per-user aggregate over a date range.
type LeaderboardEntry struct {
	UserID         string
	Handle         string
	TotalGolfScore int
	RoundsPlayed   int
}

// ParseDate validates v against DateLayout and returns the canonical form.
func ParseDate(v string) (string, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return "", fmt.Errorf("puzzle date must be YYYY-MM-DD: %q", v)
	}
	return t.Format(DateLayout), nil
}

// NormalizeType maps legacy stored values onto the current Type set.
func NormalizeType(v string) Type {
	switch v {
	case string(TypePenalty):
		return TypePenalty
	default:
		return TypeRegular
	}
}
