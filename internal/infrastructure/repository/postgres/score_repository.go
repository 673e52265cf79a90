package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nate-sepich/par6/internal/domain/score"
	qb "github.com/nate-sepich/par6/internal/platform/querybuilder"
)

var scoreColumns = []string{
	"public_id", "user_id", "puzzle_date", "status", "guesses_used",
	"golf_score", "source_text", "score_type", "created_at", "updated_at",
}

// upsertScoreSuffix resolves the (user_id, puzzle_date) unique constraint by
// replacing the result in place. public_id and created_at are deliberately
// not in the SET list, so the original identity survives overwrites.
const upsertScoreSuffix = `ON CONFLICT (user_id, puzzle_date) DO UPDATE SET
status = EXCLUDED.status,
guesses_used = EXCLUDED.guesses_used,
golf_score = EXCLUDED.golf_score,
source_text = EXCLUDED.source_text,
score_type = EXCLUDED.score_type,
updated_at = EXCLUDED.updated_at`

type ScoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func (r *ScoreRepository) GetByUserAndDate(ctx context.Context, userID, puzzleDate string) (score.Score, bool, error) {
	query, args, err := qb.Select(scoreColumns...).
		From("scores").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("puzzle_date", puzzleDate),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return score.Score{}, false, fmt.Errorf("build get score query: %w", err)
	}

	var row scoreTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return score.Score{}, false, nil
		}
		return score.Score{}, false, fmt.Errorf("get score: %w", err)
	}

	return scoreFromModel(row), true, nil
}

func (r *ScoreRepository) Upsert(ctx context.Context, s score.Score) error {
	query, args, err := qb.InsertModel("scores", scoreInsertFromDomain(s), upsertScoreSuffix)
	if err != nil {
		return fmt.Errorf("build upsert score query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

func (r *ScoreRepository) InsertIfAbsent(ctx context.Context, s score.Score) (bool, error) {
	query, args, err := qb.InsertModel("scores", scoreInsertFromDomain(s), "ON CONFLICT (user_id, puzzle_date) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert score query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected insert score: %w", err)
	}

	return affected > 0, nil
}

func (r *ScoreRepository) ListByUserInRange(ctx context.Context, userID, startDate, endDate string) ([]score.Score, error) {
	query, args, err := qb.Select(scoreColumns...).
		From("scores").
		Where(
			qb.Eq("user_id", userID),
			qb.Expr("puzzle_date >= ?", startDate),
			qb.Expr("puzzle_date <= ?", endDate),
		).
		OrderBy("puzzle_date ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list user scores query: %w", err)
	}

	var rows []scoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list user scores: %w", err)
	}

	out := make([]score.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromModel(row))
	}
	return out, nil
}

func (r *ScoreRepository) ListInRange(ctx context.Context, startDate, endDate string) ([]score.Score, error) {
	query, args, err := qb.Select(scoreColumns...).
		From("scores").
		Where(
			qb.Expr("puzzle_date >= ?", startDate),
			qb.Expr("puzzle_date <= ?", endDate),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scores query: %w", err)
	}

	var rows []scoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}

	out := make([]score.Score, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoreFromModel(row))
	}
	return out, nil
}
