package tournament

import "time"

// Allowed tournament lengths, in calendar days.
const (
	DurationShort = 9
	DurationLong  = 18
)

// JoinCodeMaxLen bounds the id prefix accepted as a join code.
const JoinCodeMaxLen = 8

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
	// StatusArchived is reserved for retention tooling; nothing in the
	// service transitions into it yet.
	StatusArchived Status = "archived"
)

type Type string

const (
	TypePublic  Type = "public"
	TypePrivate Type = "private"
)

// Tournament is a fixed-window competition. StartDate and EndDate are
// inclusive puzzle dates; EndDate = StartDate + DurationDays - 1.
// IsActive mirrors Status for the common active/ended pair and backs the
// conditional end write.
type Tournament struct {
	ID           string
	Name         string
	StartDate    string
	EndDate      string
	DurationDays int
	CreatedBy    string
	Participants []string
	CreatedAt    time.Time
	IsActive     bool
	Status       Status
	Type         Type
	EndedAt      *time.Time
	WinnerUserID string
	DeletedAt    *time.Time
}

// ValidDuration reports whether d is one of the supported lengths.
func ValidDuration(d int) bool {
	return d == DurationShort || d == DurationLong
}

func (t Tournament) HasParticipant(userID string) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Standing is one row of a computed tournament ranking.
type Standing struct {
	UserID        string
	Handle        string
	TotalScore    int
	CompletedDays int
	Position      int
	IsCurrentUser bool
}

// Summary pairs a tournament with its live standings for listing endpoints.
type Summary struct {
	Tournament        Tournament
	Standings         []Standing
	UserParticipating bool
	TotalParticipants int
}

// FinalResults is the post-end view: standings recomputed live, winner and
// end time as persisted when the tournament was ended.
type FinalResults struct {
	Tournament        Tournament
	Winner            *Standing
	FinalStandings    []Standing
	EndedAt           time.Time
	TotalParticipants int
	CompletedDays     int
}
