package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nate-sepich/par6/internal/domain/user"
	qb "github.com/nate-sepich/par6/internal/platform/querybuilder"
)

var sessionColumns = []string{"token", "user_id", "created_at", "expires_at"}

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Put(ctx context.Context, s user.Session) error {
	insertModel := sessionInsertModel{
		Token:     s.Token,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	query, args, err := qb.InsertModel("sessions", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create session query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) Get(ctx context.Context, token string) (user.Session, bool, error) {
	query, args, err := qb.Select(sessionColumns...).
		From("sessions").
		Where(qb.Eq("token", token)).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.Session{}, false, fmt.Errorf("build get session query: %w", err)
	}

	var row sessionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.Session{}, false, nil
		}
		return user.Session{}, false, fmt.Errorf("get session: %w", err)
	}

	return user.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, true, nil
}
