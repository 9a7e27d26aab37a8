package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
)

// UserStore answers account lookups from the users table maintained by the account service.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore returns a UserStore backed by the given connection pool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

var _ store.UserStore = (*UserStore)(nil)

// Exists reports whether the user id names a registered account.
func (s *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}
