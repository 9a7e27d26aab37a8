package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
)

// UserStore answers account lookups from the users table maintained by the account service.
type UserStore struct {
	db *sql.DB
}

// NewUserStore returns a UserStore backed by the given database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

var _ store.UserStore = (*UserStore)(nil)

// Exists reports whether the user id names a registered account.
func (s *UserStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}
