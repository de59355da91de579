package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moodlet/moodlet-backend/internal/common"
)

func TestNewTokens(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewTokens("secret", 0)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", 2*time.Hour)
	require.NoError(t, err)

	signed, expireAt, err := tokens.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), expireAt, 5*time.Second)

	userID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestTokens_Rejects(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour)
	require.NoError(t, err)

	other, err := NewTokens("other-secret", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Issue(1)
	require.NoError(t, err)

	expired, err := NewTokens("secret", time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	stale, _, err := expired.Issue(1)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong secret", token: foreign},
		{name: "expired", token: stale},
		{name: "unsigned", token: none},
		{name: "non numeric subject", token: badSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			assert.ErrorIs(t, err, common.ErrUnauthorized)
		})
	}
}
