package postgres

import (
	"database/sql"
	"time"

	"github.com/nate-sepich/par6/internal/domain/score"
)

type scoreTableModel struct {
	ID          int64         `db:"id"`
	PublicID    string        `db:"public_id"`
	UserID      string        `db:"user_id"`
	PuzzleDate  string        `db:"puzzle_date"`
	Status      string        `db:"status"`
	GuessesUsed sql.NullInt64 `db:"guesses_used"`
	GolfScore   int           `db:"golf_score"`
	SourceText  string        `db:"source_text"`
	ScoreType   string        `db:"score_type"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type scoreInsertModel struct {
	PublicID    string        `db:"public_id"`
	UserID      string        `db:"user_id"`
	PuzzleDate  string        `db:"puzzle_date"`
	Status      string        `db:"status"`
	GuessesUsed sql.NullInt64 `db:"guesses_used"`
	GolfScore   int           `db:"golf_score"`
	SourceText  string        `db:"source_text"`
	ScoreType   string        `db:"score_type"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func scoreInsertFromDomain(s score.Score) scoreInsertModel {
	m := scoreInsertModel{
		PublicID:   s.ID,
		UserID:     s.UserID,
		PuzzleDate: s.PuzzleDate,
		Status:     string(s.Status),
		GolfScore:  s.GolfScore,
		SourceText: s.SourceText,
		ScoreType:  string(s.Type),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.GuessesUsed != nil {
		m.GuessesUsed = sql.NullInt64{Int64: int64(*s.GuessesUsed), Valid: true}
	}
	return m
}

func scoreFromModel(m scoreTableModel) score.Score {
	s := score.Score{
		ID:         m.PublicID,
		UserID:     m.UserID,
		PuzzleDate: m.PuzzleDate,
		Status:     score.Status(m.Status),
		GolfScore:  m.GolfScore,
		SourceText: m.SourceText,
		Type:       score.NormalizeType(m.ScoreType),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.GuessesUsed.Valid {
		g := int(m.GuessesUsed.Int64)
		s.GuessesUsed = &g
	}
	return s
}
