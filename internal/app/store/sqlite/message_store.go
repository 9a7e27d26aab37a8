package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/randx"
)

// MessageStore persists chat messages in SQLite.
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore returns a MessageStore backed by the given database handle.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, message, sender_id, group_id, created_date, seen)
		VALUES (?, ?, ?, ?, ?, FALSE)
	`, msg.ID, msg.Body, msg.SenderID, msg.ConversationID, msg.CreatedDate)
	if err != nil {
		return store.Message{}, fmt.Errorf("insert message: %w", err)
	}

	return msg, nil
}

// ListByConversation returns one page of a conversation's messages, newest-first.
// Equal timestamps fall back to insertion order via rowid.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]store.Message, error) {
	if err := store.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, sender_id, group_id, created_date, seen
		FROM messages
		WHERE group_id = ?
		ORDER BY created_date DESC, rowid DESC
		LIMIT ? OFFSET ?
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// EnsureConversation materializes the conversation record on first contact. Idempotent.
func (s *MessageStore) EnsureConversation(ctx context.Context, conversationID string) error {
	now := time.Now().Unix()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (id, group_name, created_date, modified_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, conversationID, conversationID, now, now)
	if err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}
	return nil
}
