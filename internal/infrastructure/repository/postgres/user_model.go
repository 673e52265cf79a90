package postgres

import "time"

type userTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	Handle      string    `db:"handle"`
	HandleLower string    `db:"handle_lower"`
	CreatedAt   time.Time `db:"created_at"`
}

type userInsertModel struct {
	PublicID    string    `db:"public_id"`
	Handle      string    `db:"handle"`
	HandleLower string    `db:"handle_lower"`
	CreatedAt   time.Time `db:"created_at"`
}

type sessionTableModel struct {
	ID        int64     `db:"id"`
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

type sessionInsertModel struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
