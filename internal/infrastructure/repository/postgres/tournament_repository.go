package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nate-sepich/par6/internal/domain/tournament"
	qb "github.com/nate-sepich/par6/internal/platform/querybuilder"
)

var tournamentColumns = []string{
	"public_id", "name", "start_date", "end_date", "duration_days",
	"created_by", "created_at", "is_active", "status", "tournament_type",
	"ended_at", "winner_user_id", "deleted_at",
}

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) Create(ctx context.Context, t tournament.Tournament) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create tournament: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertModel := tournamentInsertModel{
		PublicID:     t.ID,
		Name:         t.Name,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		DurationDays: t.DurationDays,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		IsActive:     t.IsActive,
		Status:       string(t.Status),
		Type:         string(t.Type),
	}
	query, args, err := qb.InsertModel("tournaments", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create tournament query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create tournament: %w", err)
	}

	for _, userID := range t.Participants {
		if err := insertParticipant(ctx, tx, t.ID, userID, t.CreatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create tournament: %w", err)
	}
	return nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select(tournamentColumns...).
		From("tournaments").
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament: %w", err)
	}

	participants, err := r.loadParticipants(ctx, []string{row.PublicID})
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return tournamentFromModel(row, participants[row.PublicID]), true, nil
}

func (r *TournamentRepository) FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).
		From("tournaments").
		Where(
			qb.Expr("public_id LIKE ?", strings.ToLower(prefix)+"%"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build find tournament by prefix query: %w", err)
	}

	return r.selectTournaments(ctx, query, args)
}

func (r *TournamentRepository) AddParticipant(ctx context.Context, tournamentID, userID string, joinedAt time.Time) error {
	return insertParticipant(ctx, r.db, tournamentID, userID, joinedAt)
}

func (r *TournamentRepository) RemoveParticipant(ctx context.Context, tournamentID, userID string) (bool, error) {
	query, args, err := qb.DeleteFrom("tournament_participants").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build remove participant query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected remove participant: %w", err)
	}
	return affected > 0, nil
}

func (r *TournamentRepository) ListByParticipant(ctx context.Context, userID string) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(prefixColumns("t", tournamentColumns)...).
		From("tournaments t JOIN tournament_participants p ON p.tournament_public_id = t.public_id").
		Where(
			qb.Eq("p.user_id", userID),
			qb.IsNull("t.deleted_at"),
		).
		OrderBy("t.created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments by participant query: %w", err)
	}

	return r.selectTournaments(ctx, query, args)
}

func (r *TournamentRepository) ListPublic(ctx context.Context, limit, offset int) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).
		From("tournaments").
		Where(
			qb.Eq("tournament_type", string(tournament.TypePublic)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list public tournaments query: %w", err)
	}

	return r.selectTournaments(ctx, query, args)
}

func (r *TournamentRepository) SearchPublic(ctx context.Context, search string, limit int) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).
		From("tournaments").
		Where(
			qb.Eq("tournament_type", string(tournament.TypePublic)),
			qb.Expr("name ILIKE ?", "%"+search+"%"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build search public tournaments query: %w", err)
	}

	return r.selectTournaments(ctx, query, args)
}

func (r *TournamentRepository) ListActiveEndedBefore(ctx context.Context, date string) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).
		From("tournaments").
		Where(
			qb.Eq("is_active", true),
			qb.Expr("end_date < ?", date),
			qb.IsNull("deleted_at"),
		).
		OrderBy("public_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired tournaments query: %w", err)
	}

	return r.selectTournaments(ctx, query, args)
}

// MarkEnded is the conditional end write: the is_active guard in the WHERE
// clause means exactly one of any number of racing callers flips the row.
func (r *TournamentRepository) MarkEnded(ctx context.Context, id string, endedAt time.Time, winnerUserID string) (bool, error) {
	builder := qb.Update("tournaments").
		Set("is_active", false).
		Set("status", string(tournament.StatusEnded)).
		Set("ended_at", endedAt).
		Where(
			qb.Eq("public_id", id),
			qb.Eq("is_active", true),
			qb.IsNull("deleted_at"),
		)
	if winnerUserID != "" {
		builder = builder.Set("winner_user_id", winnerUserID)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark tournament ended query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark tournament ended: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected mark tournament ended: %w", err)
	}
	return affected > 0, nil
}

func (r *TournamentRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) (bool, error) {
	query, args, err := qb.Update("tournaments").
		Set("is_active", false).
		Set("deleted_at", deletedAt).
		Where(
			qb.Eq("public_id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build soft delete tournament query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("soft delete tournament: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected soft delete tournament: %w", err)
	}
	return affected > 0, nil
}

func (r *TournamentRepository) selectTournaments(ctx context.Context, query string, args []any) ([]tournament.Tournament, error) {
	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PublicID)
	}
	participants, err := r.loadParticipants(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournamentFromModel(row, participants[row.PublicID]))
	}
	return out, nil
}

func (r *TournamentRepository) loadParticipants(ctx context.Context, tournamentIDs []string) (map[string][]string, error) {
	ids := make([]any, 0, len(tournamentIDs))
	for _, id := range tournamentIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select("tournament_public_id", "user_id").
		From("tournament_participants").
		Where(qb.In("tournament_public_id", ids)).
		OrderBy("joined_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build load participants query: %w", err)
	}

	var rows []struct {
		TournamentID string `db:"tournament_public_id"`
		UserID       string `db:"user_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	out := make(map[string][]string, len(tournamentIDs))
	for _, row := range rows {
		out[row.TournamentID] = append(out[row.TournamentID], row.UserID)
	}
	return out, nil
}

func insertParticipant(ctx context.Context, execer sqlx.ExecerContext, tournamentID, userID string, joinedAt time.Time) error {
	insertModel := participantInsertModel{
		TournamentID: tournamentID,
		UserID:       userID,
		JoinedAt:     joinedAt,
	}
	query, args, err := qb.InsertModel("tournament_participants", insertModel, "ON CONFLICT (tournament_public_id, user_id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build add participant query: %w", err)
	}
	if _, err := execer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func prefixColumns(alias string, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		out = append(out, alias+"."+c)
	}
	return out
}
