/*
Package chat contains the realtime core: presence tracking, room membership,
conversation addressing, and the event router that ties them to the message store.

This file defines the Hub, the single router for all realtime events. Each
connection's ReadPump calls Dispatch serially, so events from one connection are
handled in arrival order; events from different connections interleave freely.
*/
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/configs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/logx"
)

// storeTimeout bounds every persistence call made from the event path, so a
// stalled database surfaces as a storage error instead of hanging the router.
const storeTimeout = 5 * time.Second

// Hub routes inbound realtime events to the presence registry, the room table
// and the message store, and emits outbound events to targeted connections.
type Hub struct {
	presence *Presence
	rooms    *Rooms

	messages store.MessageStore
	users    store.UserStore

	config *configs.AppConfig

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub wires the event router to its collaborators.
func NewHub(cfg *configs.AppConfig, messages store.MessageStore, users store.UserStore, resolver IdentityResolver) *Hub {
	return &Hub{
		presence: NewPresence(resolver),
		rooms:    NewRooms(),
		messages: messages,
		users:    users,
		config:   cfg,
		logger:   logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Presence exposes the registry for handlers and tests.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Rooms exposes the membership table for handlers and tests.
func (h *Hub) Rooms() *Rooms {
	return h.rooms
}

// HandleConnect registers a freshly upgraded connection as anonymous.
func (h *Hub) HandleConnect(c *Client) {
	h.presence.Register(c)
	h.logger.Info().Str("conn_id", c.ID).Msg("Connection registered.")
}

// HandleDisconnect unwinds all shared state owned by the connection: presence
// in both directions, membership in every room, and the outbound queue.
// Idempotent; safe to call at any point of the connection's life.
func (h *Hub) HandleDisconnect(c *Client) {
	h.presence.Unregister(c)
	h.rooms.Purge(c)
	c.closeSend()
	h.logger.Info().Str("conn_id", c.ID).Msg("Connection unregistered.")
}

// Shutdown closes every registered connection's outbound queue.
func (h *Hub) Shutdown() {
	for _, c := range h.presence.Connections() {
		h.HandleDisconnect(c)
	}
	h.logger.Info().Msg("Hub shutdown complete.")
}

// Dispatch routes one inbound frame from the given connection.
func (h *Hub) Dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid JSON")
		return
	}

	switch env.Event {
	case EventAuth:
		h.handleAuth(c, env.Data)

	case EventPrivateChat:
		h.handlePrivateChat(c, env.Data)

	case EventChatGroup:
		h.handleChatGroup(c, env.Data)

	case EventJoin:
		h.handleJoin(c, env.Data)

	case EventLeave:
		h.handleLeave(c, env.Data)

	default:
		h.logger.Warn().Str("event", string(env.Event)).Str("conn_id", c.ID).Msg("Client sent unsupported event")
	}
}

// handleAuth binds the connection to the identity carried by the credential.
// Failure is reported to this connection only; nothing is broadcast and the
// connection stays anonymous.
func (h *Hub) handleAuth(c *Client, data json.RawMessage) {
	credential := decodeCredential(data)
	if credential == "" {
		c.SendError(errs.NewError(errs.ErrInvalidCredential))
		return
	}

	identity, customErr := h.presence.Authenticate(c, credential)
	if customErr != nil {
		h.logger.Warn().Str("conn_id", c.ID).Msg("Auth failed, connection stays anonymous.")
		c.SendError(customErr)
		return
	}

	h.logger.Info().Str("conn_id", c.ID).Str("user_id", identity).Msg("Connection authenticated.")

	if h.config.AnnounceLogins {
		payload, err := NewEvent(EventLoginAnnounce, identity)
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to build login announce event")
			return
		}
		h.broadcastAll(payload)
	}
}

// handlePrivateChat persists a direct message and delivers it to each of the
// receiver's live connections. The sender gets no echo; their own other
// connections are not in the receiver's fan-out set.
func (h *Hub) handlePrivateChat(c *Client, data json.RawMessage) {
	sender, ok := h.presence.IdentityOf(c)
	if !ok || sender == "" {
		c.SendError(errs.NewError(errs.ErrNotAuthenticated))
		return
	}

	var p PrivateChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid private_chat payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}
	if p.Message == "" {
		c.SendError(errs.NewError(errs.ErrMessageContentEmpty))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	exists, err := h.users.Exists(ctx, p.ReceiverID)
	if err != nil {
		h.logger.Error().Err(err).Str("receiver_id", p.ReceiverID).Msg("Receiver lookup failed")
		c.SendError(errs.NewError(errs.ErrStorage))
		return
	}
	if !exists {
		// The upstream backend dropped these silently; the sender only hears
		// about it when the notify policy flag is set.
		h.logger.Error().Str("receiver_id", p.ReceiverID).Msg("Not found receiver")
		if h.config.NotifyUnknownReceiver {
			c.SendError(errs.NewError(errs.ErrUserNotFound))
		}
		return
	}

	conversationID, customErr := ConversationID(sender, p.ReceiverID)
	if customErr != nil {
		c.SendError(customErr)
		return
	}

	msg, err := h.messages.Append(ctx, conversationID, sender, p.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to persist private message")
		c.SendError(errs.NewError(errs.ErrStorage))
		return
	}

	payload, err := NewEvent(EventNewPrivateMsg, msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build new_private_msg event")
		return
	}

	// The message is durable at this point. Delivery failures to individual
	// connections are logged and do not roll it back.
	for _, receiver := range h.presence.ConnectionsFor(p.ReceiverID) {
		if err := receiver.Send(payload); err != nil {
			h.logger.Warn().Err(err).
				Str("conn_id", receiver.ID).
				Str("message_id", msg.ID).
				Msg("Failed to deliver private message to connection")
		}
	}
}

// handleChatGroup broadcasts an ephemeral sender-prefixed line to the room.
// Group chat is not persisted.
func (h *Hub) handleChatGroup(c *Client, data json.RawMessage) {
	var p GroupChatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid chat_group payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}
	if p.Room == "" {
		c.SendError(errs.NewError(errs.ErrRoomNameInvalid))
		return
	}

	payload, err := NewEvent(EventNewGroupMsg, p.Username+": "+p.Message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build new_group_msg event")
		return
	}

	h.broadcastRoom(p.Room, payload)
}

// handleJoin adds the connection to the room and notifies the room, the new
// member included.
func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid join payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if customErr := h.rooms.Join(p.Room, c); customErr != nil {
		c.SendError(customErr)
		return
	}

	notice := p.Username + " has entered the room." + strings.ToUpper(p.Room)
	payload, err := NewEvent(EventMsgRoom, notice)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build msg_room event")
		return
	}

	h.broadcastRoom(p.Room, payload)
}

// handleLeave removes the connection from the room and notifies the remaining members.
func (h *Hub) handleLeave(c *Client, data json.RawMessage) {
	var p RoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Client sent invalid leave payload")
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if customErr := h.rooms.Leave(p.Room, c); customErr != nil {
		c.SendError(customErr)
		return
	}

	notice := p.Username + " has left the room " + strings.ToUpper(p.Room)
	payload, err := NewEvent(EventMsgRoom, notice)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build msg_room event")
		return
	}

	h.broadcastRoom(p.Room, payload)
}

// broadcastAll emits one frame to every registered connection. The target set
// is snapshotted first so concurrent disconnects cannot corrupt the iteration.
func (h *Hub) broadcastAll(payload []byte) {
	for _, c := range h.presence.Connections() {
		if err := c.Send(payload); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", c.ID).Msg("Failed to broadcast to connection")
		}
	}
}

// broadcastRoom emits one frame to every current member of the room.
func (h *Hub) broadcastRoom(room string, payload []byte) {
	for _, c := range h.rooms.MembersOf(room) {
		if err := c.Send(payload); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", c.ID).Str("room", room).Msg("Failed to broadcast to room member")
		}
	}
}

// decodeCredential accepts both auth data shapes: a bare JSON string with the
// credential, or an object with a token field.
func decodeCredential(data json.RawMessage) string {
	var direct string
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct
	}

	var p AuthPayload
	if err := json.Unmarshal(data, &p); err == nil {
		return p.Token
	}

	return ""
}
