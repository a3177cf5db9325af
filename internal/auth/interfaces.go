package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"patienthelpdesk/internal/user"
)

// TokenService defines the interface for access token creation and validation.
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository defines the user persistence operations the auth service needs
type UserRepository interface {
	Create(ctx context.Context, name, email, dob string, age int, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// RefreshTokenRepository defines the interface for refresh token storage
type RefreshTokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// ResetChallengeRepository stores the ephemeral password reset challenge.
// At most one challenge is outstanding per email; storing again overwrites.
type ResetChallengeRepository interface {
	Store(ctx context.Context, email, code string, issuedAt time.Time) error
	Get(ctx context.Context, email string) (*ResetChallenge, error)
	RecordFailedAttempt(ctx context.Context, email string) (int64, error)
	Delete(ctx context.Context, email string) error
}

// EmailSender defines the interface for outbound reset-code mail
type EmailSender interface {
	SendResetCode(ctx context.Context, toEmail, code string) error
}

// SessionInvalidator clears per-user session state (page, chat transcript)
// on logout.
type SessionInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
