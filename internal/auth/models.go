package auth

import (
	"time"

	"github.com/google/uuid"
)

// AuthTokens is the pair issued on successful login
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshToken is the stored form of a long-lived refresh token
type RefreshToken struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsValid() bool {
	return !t.IsExpired() && !t.IsRevoked()
}

// ResetChallenge is the ephemeral (code, email, issuance) tuple proving
// identity during password recovery. It lives in Redis with a TTL and is
// never persisted.
type ResetChallenge struct {
	Email    string
	Code     string
	IssuedAt time.Time
	Attempts int64
}
