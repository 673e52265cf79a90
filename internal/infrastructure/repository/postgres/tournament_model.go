package postgres

import (
	"database/sql"
	"time"

	"github.com/nate-sepich/par6/internal/domain/tournament"
)

type tournamentTableModel struct {
	ID           int64          `db:"id"`
	PublicID     string         `db:"public_id"`
	Name         string         `db:"name"`
	StartDate    string         `db:"start_date"`
	EndDate      string         `db:"end_date"`
	DurationDays int            `db:"duration_days"`
	CreatedBy    string         `db:"created_by"`
	CreatedAt    time.Time      `db:"created_at"`
	IsActive     bool           `db:"is_active"`
	Status       string         `db:"status"`
	Type         string         `db:"tournament_type"`
	EndedAt      *time.Time     `db:"ended_at"`
	WinnerUserID sql.NullString `db:"winner_user_id"`
	DeletedAt    *time.Time     `db:"deleted_at"`
}

type tournamentInsertModel struct {
	PublicID     string    `db:"public_id"`
	Name         string    `db:"name"`
	StartDate    string    `db:"start_date"`
	EndDate      string    `db:"end_date"`
	DurationDays int       `db:"duration_days"`
	CreatedBy    string    `db:"created_by"`
	CreatedAt    time.Time `db:"created_at"`
	IsActive     bool      `db:"is_active"`
	Status       string    `db:"status"`
	Type         string    `db:"tournament_type"`
}

type participantInsertModel struct {
	TournamentID string    `db:"tournament_public_id"`
	UserID       string    `db:"user_id"`
	JoinedAt     time.Time `db:"joined_at"`
}

func tournamentFromModel(m tournamentTableModel, participants []string) tournament.Tournament {
	t := tournament.Tournament{
		ID:           m.PublicID,
		Name:         m.Name,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		DurationDays: m.DurationDays,
		CreatedBy:    m.CreatedBy,
		Participants: participants,
		CreatedAt:    m.CreatedAt,
		IsActive:     m.IsActive,
		Status:       tournament.Status(m.Status),
		Type:         tournament.Type(m.Type),
		EndedAt:      m.EndedAt,
		DeletedAt:    m.DeletedAt,
	}
	if m.WinnerUserID.Valid {
		t.WinnerUserID = m.WinnerUserID.String
	}
	return t
}
