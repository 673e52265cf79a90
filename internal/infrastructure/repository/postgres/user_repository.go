package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nate-sepich/par6/internal/domain/user"
	qb "github.com/nate-sepich/par6/internal/platform/querybuilder"
)

var userColumns = []string{"public_id", "handle", "handle_lower", "created_at"}

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	insertModel := userInsertModel{
		PublicID:    u.ID,
		Handle:      u.Handle,
		HandleLower: u.HandleLower,
		CreatedAt:   u.CreatedAt,
	}
	query, args, err := qb.InsertModel("users", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", id))
}

func (r *UserRepository) GetByHandle(ctx context.Context, handleLower string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("handle_lower", handleLower))
}

func (r *UserRepository) getOne(ctx context.Context, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).
		From("users").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return userFromModel(row), true, nil
}

func userFromModel(m userTableModel) user.User {
	return user.User{
		ID:          m.PublicID,
		Handle:      m.Handle,
		HandleLower: m.HandleLower,
		CreatedAt:   m.CreatedAt,
	}
}
