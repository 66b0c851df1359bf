package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// SessionClaims defines JWT claims for portal sessions. The registered ID
// doubles as the browsing-session scope for redirect intents.
type SessionClaims struct {
	AccountID uint64 `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session JWT with a fresh session ID.
func GenerateSessionToken(secret string, accountID uint64, email, name string, expiry time.Duration) (token string, sessionID string, err error) {
	sessionID, err = newSessionID()
	if err != nil {
		return "", "", err
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		AccountID: accountID,
		Email:     email,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if errSign != nil {
		return "", "", errSign
	}
	return signed, sessionID, nil
}

// ParseSessionToken validates a session JWT and returns its claims.
func ParseSessionToken(secret string, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// newSessionID returns a random hex session identifier.
func newSessionID() (string, error) {
	raw := make([]byte, 16)
	if _, errRead := io.ReadFull(rand.Reader, raw); errRead != nil {
		return "", fmt.Errorf("generate session id: %w", errRead)
	}
	return hex.EncodeToString(raw), nil
}
