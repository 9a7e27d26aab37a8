package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/randx"
)

// MessageStore persists chat messages in PostgreSQL.
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore returns a MessageStore backed by the given connection pool.
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

var _ store.MessageStore = (*MessageStore)(nil)

// Append assigns an id and creation time, persists the message, and returns the stored record.
func (s *MessageStore) Append(ctx context.Context, conversationID, senderID, body string) (store.Message, error) {
	msg := store.Message{
		ID:             randx.MessageID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedDate:    time.Now().Unix(),
		Seen:           false,
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, message, sender_id, group_id, created_date, seen)
		VALUES ($1, $2, $3, $4, $5, FALSE)
	`, msg.ID, msg.Body, msg.SenderID, msg.ConversationID, msg.CreatedDate)
	if err != nil {
		return store.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// ListByConversation returns one page of a conversation's messages, newest-first.
// Equal timestamps fall back to insertion order via the seq column.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]store.Message, error) {
	if err := store.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, message, sender_id, group_id, created_date, seen
		FROM messages
		WHERE group_id = $1
		ORDER BY created_date DESC, seq DESC
		LIMIT $2 OFFSET $3
	`, conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.Body, &m.SenderID, &m.ConversationID, &m.CreatedDate, &m.Seen); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return res, nil
}

// Delete removes a single message by id, failing with store.ErrNotFound when absent.
func (s *MessageStore) Delete(ctx context.Context, messageID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// EnsureConversation materializes the conversation record on first contact. Idempotent.
func (s *MessageStore) EnsureConversation(ctx context.Context, conversationID string) error {
	now := time.Now().Unix()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO groups (id, group_name, created_date, modified_date)
		VALUES ($1, $1, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`, conversationID, now)
	if err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}
	return nil
}
