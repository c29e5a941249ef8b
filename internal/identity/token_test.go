package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestTokenProvider_SignInSignOut(t *testing.T) {
	p := NewTokenProvider(testSecret)

	_, ok := p.Current()
	require.False(t, ok)

	token, err := GenerateToken(Identity{UID: "u-1"}, testSecret, time.Minute)
	require.NoError(t, err)
	require.NoError(t, p.SignIn(token))

	id, ok := p.Current()
	require.True(t, ok)
	require.Equal(t, "u-1", id.UID)
	require.False(t, id.Anonymous)

	p.SignOut()
	_, ok = p.Current()
	require.False(t, ok)
}

func TestTokenProvider_RejectsBadSignature(t *testing.T) {
	p := NewTokenProvider(testSecret)

	token, err := GenerateToken(Identity{UID: "u-1"}, []byte("wrong-secret"), time.Minute)
	require.NoError(t, err)
	require.Error(t, p.SignIn(token))

	_, ok := p.Current()
	require.False(t, ok)
}

func TestTokenProvider_RejectsExpired(t *testing.T) {
	p := NewTokenProvider(testSecret)

	token, err := GenerateToken(Identity{UID: "u-1"}, testSecret, -time.Minute)
	require.NoError(t, err)
	require.Error(t, p.SignIn(token))
}

func TestTokenProvider_OnChange(t *testing.T) {
	p := NewTokenProvider(testSecret)

	var events []bool
	unsub := p.OnChange(func(_ Identity, signedIn bool) {
		events = append(events, signedIn)
	})

	token, err := GenerateToken(Identity{UID: "u-1"}, testSecret, time.Minute)
	require.NoError(t, err)
	require.NoError(t, p.SignIn(token))
	p.SignOut()

	require.Equal(t, []bool{true, false}, events)

	unsub()
	require.NoError(t, p.SignIn(token))
	require.Len(t, events, 2)
}

func TestCanSync_AnonymousIsGated(t *testing.T) {
	p := NewTokenProvider(testSecret)

	token, err := GenerateToken(Identity{UID: "guest", Anonymous: true}, testSecret, time.Minute)
	require.NoError(t, err)
	require.NoError(t, p.SignIn(token))

	_, ok := CanSync(p)
	require.False(t, ok)
}

func TestCanSync_Authenticated(t *testing.T) {
	p := NewTokenProvider(testSecret)

	token, err := GenerateToken(Identity{UID: "u-9"}, testSecret, time.Minute)
	require.NoError(t, err)
	require.NoError(t, p.SignIn(token))

	id, ok := CanSync(p)
	require.True(t, ok)
	require.Equal(t, "u-9", id.UID)
}
