/*
Package chat contains the realtime core: presence tracking, room membership,
conversation addressing, and the event router that ties them to the message store.
*/
package chat

import (
	"strings"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

// conversationIDSeparator joins the two participant ids. Identities carrying it
// are rejected so that no two distinct unordered pairs can produce the same id.
const conversationIDSeparator = ":"

// ConversationID derives the conversation identifier for the unordered pair of
// user identities (a, b). The function is pure, commutative and deterministic:
// ConversationID(a, b) == ConversationID(b, a), and distinct pairs never collide.
// It fails with an invalid-argument error when either identity is empty, when
// both are the same user, or when an identity contains the reserved separator.
func ConversationID(a, b string) (string, *errs.CustomError) {
	if a == "" || b == "" || a == b {
		return "", errs.NewError(errs.ErrInvalidConversationPeers)
	}
	if strings.Contains(a, conversationIDSeparator) || strings.Contains(b, conversationIDSeparator) {
		return "", errs.NewError(errs.ErrInvalidConversationPeers)
	}

	if a > b {
		a, b = b, a
	}

	return a + conversationIDSeparator + b, nil
}
