package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestGate(t *testing.T, passcode string) *Gate {
	t.Helper()
	g, err := NewGate(passcode, "", "test-secret", time.Hour)
	require.NoError(t, err)
	return g
}

func TestVerify(t *testing.T) {
	g := newTestGate(t, "open-sesame")

	assert.NoError(t, g.Verify("open-sesame"))
	assert.Error(t, g.Verify("wrong"))
	assert.Error(t, g.Verify(""))
}

func TestVerify_FailsClosedWithoutPasscode(t *testing.T) {
	g, err := NewGate("", "", "test-secret", time.Hour)
	require.NoError(t, err)

	assert.ErrorIs(t, g.Verify("anything"), ErrNoPasscode)
	assert.ErrorIs(t, g.Verify(""), ErrNoPasscode)
}

func TestNewGate_PrecomputedHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("clinic-42"), bcrypt.MinCost)
	require.NoError(t, err)

	g, err := NewGate("", string(hash), "test-secret", time.Hour)
	require.NoError(t, err)
	assert.NoError(t, g.Verify("clinic-42"))
	assert.Error(t, g.Verify("other"))
}

func TestNewGate_RequiresSecret(t *testing.T) {
	_, err := NewGate("pass", "", "", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	g := newTestGate(t, "open-sesame")

	token, err := g.IssueToken("session-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := g.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)
}

func TestParseToken_RejectsTampered(t *testing.T) {
	g := newTestGate(t, "open-sesame")
	token, err := g.IssueToken("session-123")
	require.NoError(t, err)

	_, err = g.ParseToken(token + "x")
	assert.Error(t, err)

	other, err := NewGate("open-sesame", "", "different-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	g, err := NewGate("open-sesame", "", "test-secret", -time.Minute)
	require.NoError(t, err)

	token, err := g.IssueToken("session-123")
	require.NoError(t, err)

	_, err = g.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	g := newTestGate(t, "open-sesame")
	_, err := g.ParseToken("not-a-token")
	assert.Error(t, err)
}
