package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-chan/security-chat-backend/internal/app/store"
	"github.com/mountain-chan/security-chat-backend/internal/configs"
	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

// memMessageStore is an in-memory MessageStore for router tests.
type memMessageStore struct {
	mu        sync.Mutex
	messages  []store.Message
	nextSeq   int
	appendErr error
}

func (m *memMessageStore) Append(_ context.Context, conversationID, senderID, body string) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return store.Message{}, m.appendErr
	}

	m.nextSeq++
	msg := store.Message{
		ID:             fmt.Sprintf("msg-%d", m.nextSeq),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedDate:    time.Now().Unix(),
	}
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memMessageStore) ListByConversation(_ context.Context, conversationID string, page, pageSize int) ([]store.Message, error) {
	if err := store.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []store.Message
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].ConversationID == conversationID {
			out = append(out, m.messages[i])
		}
	}
	start := (page - 1) * pageSize
	if start >= len(out) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (m *memMessageStore) Delete(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.messages {
		if msg.ID == messageID {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memMessageStore) EnsureConversation(_ context.Context, _ string) error {
	return nil
}

func (m *memMessageStore) all() []store.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]store.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// memUserStore is an in-memory UserStore for router tests.
type memUserStore struct {
	users map[string]struct{}
}

func (m *memUserStore) Exists(_ context.Context, userID string) (bool, error) {
	_, ok := m.users[userID]
	return ok, nil
}

func newTestHub(cfg *configs.AppConfig) (*Hub, *memMessageStore, *memUserStore) {
	messages := &memMessageStore{}
	users := &memUserStore{users: map[string]struct{}{
		"alice": {},
		"bob":   {},
	}}
	resolver := stubResolver{identities: map[string]string{
		"cred-alice": "alice",
		"cred-bob":   "bob",
	}}
	return NewHub(cfg, messages, users, resolver), messages, users
}

func connect(h *Hub) *Client {
	c := NewClient(h, nil)
	h.HandleConnect(c)
	return c
}

// nextEvent pops the oldest queued outbound frame of the connection.
func nextEvent(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case raw := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected a queued event, queue is empty")
		return Envelope{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case raw := <-c.send:
		t.Fatalf("unexpected event queued: %s", raw)
	default:
	}
}

func eventString(t *testing.T, env Envelope) string {
	t.Helper()

	var s string
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s
}

func eventError(t *testing.T, env Envelope) ErrorPayload {
	t.Helper()

	require.Equal(t, EventError, env.Event)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func dispatch(h *Hub, c *Client, event EventType, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		panic(err)
	}
	h.Dispatch(c, frame)
}

func TestHubAuthAnnouncesLogin(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{AnnounceLogins: true})
	c1 := connect(h)
	c2 := connect(h)

	dispatch(h, c1, EventAuth, "cred-alice")

	assert.True(t, h.Presence().IsOnline("alice"))

	for _, c := range []*Client{c1, c2} {
		env := nextEvent(t, c)
		assert.Equal(t, EventLoginAnnounce, env.Event)
		assert.Equal(t, "alice", eventString(t, env))
	}
}

func TestHubAuthAnnounceDisabled(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{AnnounceLogins: false})
	c := connect(h)

	dispatch(h, c, EventAuth, "cred-alice")

	assert.True(t, h.Presence().IsOnline("alice"))
	assertNoEvent(t, c)
}

func TestHubAuthFailureReportsToCallerOnly(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{AnnounceLogins: true})
	c1 := connect(h)
	c2 := connect(h)

	dispatch(h, c1, EventAuth, "cred-mallory")

	p := eventError(t, nextEvent(t, c1))
	assert.Equal(t, errs.ErrInvalidCredential, p.Code)
	assertNoEvent(t, c2)

	identity, ok := h.Presence().IdentityOf(c1)
	assert.True(t, ok)
	assert.Empty(t, identity, "failed auth must leave the connection anonymous")
}

func TestHubAuthObjectPayload(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)

	dispatch(h, c, EventAuth, AuthPayload{Token: "cred-bob"})

	assert.True(t, h.Presence().IsOnline("bob"))
}

func TestHubPrivateChatPersistsAndFansOut(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	sender := connect(h)
	recv1 := connect(h)
	recv2 := connect(h)

	dispatch(h, sender, EventAuth, "cred-alice")
	dispatch(h, recv1, EventAuth, "cred-bob")
	dispatch(h, recv2, EventAuth, "cred-bob")

	dispatch(h, sender, EventPrivateChat, PrivateChatPayload{ReceiverID: "bob", Message: "hi"})

	stored := messages.all()
	require.Len(t, stored, 1)
	wantConv, customErr := ConversationID("alice", "bob")
	require.Nil(t, customErr)
	assert.Equal(t, wantConv, stored[0].ConversationID)
	assert.Equal(t, "alice", stored[0].SenderID)
	assert.Equal(t, "hi", stored[0].Body)

	for _, c := range []*Client{recv1, recv2} {
		env := nextEvent(t, c)
		require.Equal(t, EventNewPrivateMsg, env.Event)

		var msg store.Message
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		assert.Equal(t, stored[0].ID, msg.ID)
		assert.Equal(t, "alice", msg.SenderID)
		assert.Equal(t, "hi", msg.Body)
		assert.False(t, msg.Seen)

		assertNoEvent(t, c)
	}

	// no echo back to the sender
	assertNoEvent(t, sender)
}

func TestHubPrivateChatRequiresAuth(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)

	dispatch(h, c, EventPrivateChat, PrivateChatPayload{ReceiverID: "bob", Message: "hi"})

	p := eventError(t, nextEvent(t, c))
	assert.Equal(t, errs.ErrNotAuthenticated, p.Code)
	assert.Empty(t, messages.all())
}

func TestHubPrivateChatEmptyMessage(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)
	dispatch(h, c, EventAuth, "cred-alice")

	dispatch(h, c, EventPrivateChat, PrivateChatPayload{ReceiverID: "bob", Message: ""})

	p := eventError(t, nextEvent(t, c))
	assert.Equal(t, errs.ErrMessageContentEmpty, p.Code)
	assert.Empty(t, messages.all())
}

func TestHubPrivateChatUnknownReceiverDroppedSilently(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)
	dispatch(h, c, EventAuth, "cred-alice")

	dispatch(h, c, EventPrivateChat, PrivateChatPayload{ReceiverID: "ghost", Message: "hello?"})

	assertNoEvent(t, c)
	assert.Empty(t, messages.all())
}

func TestHubPrivateChatUnknownReceiverNotifyEnabled(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{NotifyUnknownReceiver: true})
	c := connect(h)
	dispatch(h, c, EventAuth, "cred-alice")

	dispatch(h, c, EventPrivateChat, PrivateChatPayload{ReceiverID: "ghost", Message: "hello?"})

	p := eventError(t, nextEvent(t, c))
	assert.Equal(t, errs.ErrUserNotFound, p.Code)
	assert.Empty(t, messages.all())
}

func TestHubPrivateChatSelfMessageRejected(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)
	dispatch(h, c, EventAuth, "cred-alice")

	dispatch(h, c, EventPrivateChat, PrivateChatPayload{ReceiverID: "alice", Message: "me"})

	p := eventError(t, nextEvent(t, c))
	assert.Equal(t, errs.ErrInvalidConversationPeers, p.Code)
	assert.Empty(t, messages.all())
}

func TestHubPrivateChatStoreFailure(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	sender := connect(h)
	receiver := connect(h)
	dispatch(h, sender, EventAuth, "cred-alice")
	dispatch(h, receiver, EventAuth, "cred-bob")

	messages.appendErr = fmt.Errorf("disk full")

	dispatch(h, sender, EventPrivateChat, PrivateChatPayload{ReceiverID: "bob", Message: "hi"})

	p := eventError(t, nextEvent(t, sender))
	assert.Equal(t, errs.ErrStorage, p.Code)
	assertNoEvent(t, receiver)
}

func TestHubJoinNotifiesRoom(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	first := connect(h)
	second := connect(h)

	dispatch(h, first, EventJoin, RoomPayload{Username: "alice", Room: "lobby"})
	env := nextEvent(t, first)
	assert.Equal(t, EventMsgRoom, env.Event)
	assert.Equal(t, "alice has entered the room.LOBBY", eventString(t, env))

	dispatch(h, second, EventJoin, RoomPayload{Username: "bob", Room: "lobby"})
	for _, c := range []*Client{first, second} {
		env := nextEvent(t, c)
		assert.Equal(t, EventMsgRoom, env.Event)
		assert.Equal(t, "bob has entered the room.LOBBY", eventString(t, env))
	}
}

func TestHubLeaveNotifiesRemainingMembers(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	staying := connect(h)
	leaving := connect(h)

	dispatch(h, staying, EventJoin, RoomPayload{Username: "alice", Room: "lobby"})
	dispatch(h, leaving, EventJoin, RoomPayload{Username: "bob", Room: "lobby"})
	drain(staying)
	drain(leaving)

	dispatch(h, leaving, EventLeave, RoomPayload{Username: "bob", Room: "lobby"})

	env := nextEvent(t, staying)
	assert.Equal(t, EventMsgRoom, env.Event)
	assert.Equal(t, "bob has left the room LOBBY", eventString(t, env))

	// removed before the broadcast, so the leaver hears nothing
	assertNoEvent(t, leaving)
}

func TestHubChatGroupIsEphemeral(t *testing.T) {
	h, messages, _ := newTestHub(&configs.AppConfig{})
	m1 := connect(h)
	m2 := connect(h)
	outsider := connect(h)

	dispatch(h, m1, EventJoin, RoomPayload{Username: "alice", Room: "games"})
	dispatch(h, m2, EventJoin, RoomPayload{Username: "bob", Room: "games"})
	drain(m1)
	drain(m2)

	dispatch(h, m1, EventChatGroup, GroupChatPayload{Room: "games", Username: "alice", Message: "gg"})

	for _, c := range []*Client{m1, m2} {
		env := nextEvent(t, c)
		assert.Equal(t, EventNewGroupMsg, env.Event)
		assert.Equal(t, "alice: gg", eventString(t, env))
	}
	assertNoEvent(t, outsider)
	assert.Empty(t, messages.all(), "group chat is not persisted")
}

func TestHubJoinEmptyRoomRejected(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)

	dispatch(h, c, EventJoin, RoomPayload{Username: "alice", Room: ""})

	p := eventError(t, nextEvent(t, c))
	assert.Equal(t, errs.ErrRoomNameInvalid, p.Code)
}

func TestHubDisconnectIsIdempotent(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)
	dispatch(h, c, EventAuth, "cred-alice")
	dispatch(h, c, EventJoin, RoomPayload{Username: "alice", Room: "lobby"})

	h.HandleDisconnect(c)
	h.HandleDisconnect(c)

	assert.False(t, h.Presence().IsOnline("alice"))
	assert.Empty(t, h.Rooms().MembersOf("lobby"))
	assert.Error(t, c.Send([]byte("late")))
}

func TestHubDispatchMalformedFrames(t *testing.T) {
	h, _, _ := newTestHub(&configs.AppConfig{})
	c := connect(h)

	h.Dispatch(c, []byte("not json"))
	h.Dispatch(c, []byte(`{"event":"no_such_event","data":{}}`))

	assertNoEvent(t, c)
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
