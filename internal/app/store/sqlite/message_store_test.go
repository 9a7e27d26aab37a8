package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	// in-memory sqlite exists per connection; keep the pool at one
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestMessageStoreAppendAndList(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	msg, err := s.Append(ctx, "alice:bob", "alice", "hi")
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "alice:bob", msg.ConversationID)
	assert.Equal(t, "alice", msg.SenderID)
	assert.Equal(t, "hi", msg.Body)
	assert.False(t, msg.Seen)
	assert.NotZero(t, msg.CreatedDate)

	got, err := s.ListByConversation(ctx, "alice:bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, msg, got[0])
}

func TestMessageStoreListNewestFirstWithPaging(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		_, err := s.Append(ctx, "alice:bob", "alice", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	page1, err := s.ListByConversation(ctx, "alice:bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, page1, 10)
	assert.Equal(t, "msg-15", page1[0].Body)
	assert.Equal(t, "msg-6", page1[9].Body)

	page2, err := s.ListByConversation(ctx, "alice:bob", 2, 10)
	require.NoError(t, err)
	require.Len(t, page2, 5)
	assert.Equal(t, "msg-5", page2[0].Body)
	assert.Equal(t, "msg-1", page2[4].Body)

	page3, err := s.ListByConversation(ctx, "alice:bob", 3, 10)
	require.NoError(t, err)
	assert.Empty(t, page3)
}

func TestMessageStoreListScopedToConversation(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	_, err := s.Append(ctx, "alice:bob", "alice", "for bob")
	require.NoError(t, err)
	_, err = s.Append(ctx, "alice:carol", "alice", "for carol")
	require.NoError(t, err)

	got, err := s.ListByConversation(ctx, "alice:bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "for bob", got[0].Body)
}

func TestMessageStoreInvalidPagination(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	for _, tc := range []struct{ page, pageSize int }{
		{0, 10},
		{-1, 10},
		{1, 0},
		{1, -5},
	} {
		_, err := s.ListByConversation(ctx, "alice:bob", tc.page, tc.pageSize)
		assert.ErrorIs(t, err, store.ErrInvalidPage)
	}
}

func TestMessageStoreDelete(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	msg, err := s.Append(ctx, "alice:bob", "alice", "remove me")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, msg.ID))

	got, err := s.ListByConversation(ctx, "alice:bob", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, s.Delete(ctx, msg.ID), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "never-existed"), store.ErrNotFound)
}

func TestMessageStoreEnsureConversationIdempotent(t *testing.T) {
	s := NewMessageStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.EnsureConversation(ctx, "alice:bob"))
	require.NoError(t, s.EnsureConversation(ctx, "alice:bob"))
}
