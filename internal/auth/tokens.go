package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/moodlet/moodlet-backend/internal/common"
)

// Tokens issues and verifies HS256 access tokens whose subject is the user id.
type Tokens struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: token secret is empty", common.ErrMissingConfig)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: token ttl must be positive", common.ErrInvalidConfig)
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for userID and reports when it expires.
func (t *Tokens) Issue(userID int64) (string, time.Time, error) {
	now := t.now()
	expireAt := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(expireAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expireAt, nil
}

// Verify checks a token and returns the user id it was issued for.
func (t *Tokens) Verify(tokenStr string) (int64, error) {
	if tokenStr == "" {
		return 0, fmt.Errorf("%w: token is empty", common.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}
	if !token.Valid {
		return 0, fmt.Errorf("%w: invalid token", common.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: invalid subject %q", common.ErrUnauthorized, claims.Subject)
	}
	return userID, nil
}
