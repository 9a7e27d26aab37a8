package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

const testSecret = "test-secret-key"

func TestResolverRoundTrip(t *testing.T) {
	token, err := GenerateToken(&Payload{Identity: "alice"}, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	identity, err := NewResolver(testSecret).Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity)
}

func TestResolverRejectsGarbage(t *testing.T) {
	_, err := NewResolver(testSecret).Resolve("not-a-token")
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidCredential))
}

func TestResolverRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&Payload{Identity: "alice"}, "other-secret", UserIdentityExpiration)
	require.NoError(t, err)

	_, err = NewResolver(testSecret).Resolve(token)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidCredential))
}

func TestResolverRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken(&Payload{Identity: "alice"}, testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = NewResolver(testSecret).Resolve(token)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidCredential))
}

func TestResolverRejectsEmptyIdentity(t *testing.T) {
	token, err := GenerateToken(&Payload{}, testSecret, UserIdentityExpiration)
	require.NoError(t, err)

	_, err = NewResolver(testSecret).Resolve(token)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.ErrInvalidCredential))
}
