package chat

import (
	"encoding/json"
)

// EventType names a realtime event. Wire names are kept from the upstream
// backend so existing clients keep working.
type EventType string

// Inbound events.
const (
	// EventAuth binds the connection to the identity carried by the credential.
	EventAuth EventType = "auth"

	// EventPrivateChat persists a direct message and delivers it to the
	// receiver's live connections.
	EventPrivateChat EventType = "private_chat"

	// EventChatGroup broadcasts an ephemeral message to a room. Not persisted.
	EventChatGroup EventType = "chat_group"

	// EventJoin adds the connection to a room and notifies its members.
	EventJoin EventType = "join"

	// EventLeave removes the connection from a room and notifies the remaining members.
	EventLeave EventType = "leave"
)

// Outbound events.
const (
	// EventNewPrivateMsg carries a persisted message to a receiver connection.
	EventNewPrivateMsg EventType = "new_private_msg"

	// EventMsgRoom carries a room system notice (joins and leaves).
	EventMsgRoom EventType = "msg_room"

	// EventNewGroupMsg carries an ephemeral group chat line.
	EventNewGroupMsg EventType = "new_group_msg"

	// EventLoginAnnounce is the global identity broadcast after a successful auth.
	// The upstream backend emitted it on the default "message" event.
	EventLoginAnnounce EventType = "message"

	// EventError reports a failure to the single connection that caused it.
	EventError EventType = "error"
)

// Envelope is the framing for every realtime event in both directions.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AuthPayload carries the credential of an auth event. Clients may send either
// {"token": "..."} or the bare credential string as the data field.
type AuthPayload struct {
	Token string `json:"token"`
}

// PrivateChatPayload addresses a direct message to one registered user.
type PrivateChatPayload struct {
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

// GroupChatPayload is an ephemeral room message.
type GroupChatPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RoomPayload names the room of a join or leave event.
type RoomPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// ErrorPayload reports an error code and message to one connection.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewEvent marshals an outbound event envelope.
func NewEvent(event EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
