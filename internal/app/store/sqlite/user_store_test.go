package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreExists(t *testing.T) {
	db := openTestDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, username, created_date, modified_date)
		VALUES ('alice', 'alice', 0, 0)
	`)
	require.NoError(t, err)

	exists, err := s.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)
}
