package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)

	raw, expiresAt, err := m.Issue("user-1", "Ada", "ada@example.com", "staff")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "staff", claims.Role)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)
	other := NewManager("fedcba9876543210", time.Hour)

	foreign, _, err := other.Issue("user-1", "", "", "user")
	require.NoError(t, err)

	expired := NewManager("0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue("user-1", "", "", "user")
	require.NoError(t, err)

	noSubject, _, err := m.Issue("", "", "", "user")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        stale,
		"missing sub":    noSubject,
		"none algorithm": unsigned,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}
