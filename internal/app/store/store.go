/*
Package store defines the persistence contracts consumed by the realtime chat core.

The message store is an append-only log keyed by conversation id and creation time;
the user store is the external account collaborator, reduced to the lookups the
realtime layer needs. Two implementations exist: postgres (pgx) and sqlite.
*/
package store

import (
	"context"
	"errors"
)

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPage is returned when pagination parameters are not positive.
	ErrInvalidPage = errors.New("page and page size must be positive")
)

// Message is one persisted chat message. The JSON field names match the wire
// payload the upstream backend exposed in Message.to_json, so existing clients
// decode new_private_msg events unchanged. The conversation id is addressing
// metadata and is not part of the wire payload.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"-"`
	SenderID       string `json:"sender_id"`
	Body           string `json:"message"`
	CreatedDate    int64  `json:"created_date"`
	Seen           bool   `json:"seen"`
}

// MessageStore is the append-only persistent message log.
//
// Ordering invariant: CreatedDate (unix seconds) defines a total order on a
// conversation's messages, with ties broken by insertion order. Listing is
// newest-first.
type MessageStore interface {
	// Append assigns an id and creation time, persists the message, and returns
	// the stored record. A persistence failure means delivery must not be assumed.
	Append(ctx context.Context, conversationID, senderID, body string) (Message, error)

	// ListByConversation returns one page of a conversation's messages,
	// newest-first. Non-positive page or pageSize fails with ErrInvalidPage.
	ListByConversation(ctx context.Context, conversationID string, page, pageSize int) ([]Message, error)

	// Delete removes a single message by id, failing with ErrNotFound when absent.
	Delete(ctx context.Context, messageID string) error

	// EnsureConversation materializes the conversation record on first contact
	// between two parties. Idempotent.
	EnsureConversation(ctx context.Context, conversationID string) error
}

// UserStore exposes the account lookups the realtime layer needs from the
// external user collaborator.
type UserStore interface {
	// Exists reports whether the user id names a registered account.
	Exists(ctx context.Context, userID string) (bool, error)
}

// ValidatePage rejects non-positive pagination parameters before any query runs.
func ValidatePage(page, pageSize int) error {
	if page <= 0 || pageSize <= 0 {
		return ErrInvalidPage
	}
	return nil
}
