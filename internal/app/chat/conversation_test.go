package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

func TestConversationIDCommutative(t *testing.T) {
	ab, err := ConversationID("alice", "bob")
	require.Nil(t, err)

	ba, err := ConversationID("bob", "alice")
	require.Nil(t, err)

	assert.Equal(t, ab, ba)
}

func TestConversationIDDeterministic(t *testing.T) {
	first, err := ConversationID("alice", "bob")
	require.Nil(t, err)

	second, err := ConversationID("alice", "bob")
	require.Nil(t, err)

	assert.Equal(t, first, second)
}

func TestConversationIDDistinctPairsNeverCollide(t *testing.T) {
	ids := map[string]string{}
	users := []string{"alice", "bob", "carol", "dave"}

	for i, a := range users {
		for _, b := range users[i+1:] {
			id, err := ConversationID(a, b)
			require.Nil(t, err)

			if prev, ok := ids[id]; ok {
				t.Fatalf("pair (%s,%s) collided with %s on id %s", a, b, prev, id)
			}
			ids[id] = a + "," + b
		}
	}
}

func TestConversationIDRejectsInvalidPeers(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"same user", "alice", "alice"},
		{"empty first", "", "bob"},
		{"empty second", "alice", ""},
		{"separator in identity", "ali:ce", "bob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ConversationID(tc.a, tc.b)
			require.NotNil(t, err)
			assert.Equal(t, errs.ErrInvalidConversationPeers, err.Code)
		})
	}
}
