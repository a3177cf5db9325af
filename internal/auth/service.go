package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"patienthelpdesk/internal/logging"
	"patienthelpdesk/internal/user"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNameRequired         = errors.New("name is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrDateOfBirthRequired  = errors.New("date of birth is required")
	ErrInvalidAge           = errors.New("age must be between 0 and 150")
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
	ErrEmailNotFound        = errors.New("email not found")
	ErrDeliveryFailure      = errors.New("failed to send reset code email")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired reset code")
)

// Argon2id parameters - tuned for security vs performance balance
// Time: 3, Memory: 64MB, Threads: 4, KeyLen: 32 bytes
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Service handles authentication business logic
type Service struct {
	userRepo             UserRepository
	authRepo             RefreshTokenRepository
	resetRepo            ResetChallengeRepository
	tokenService         TokenService
	emailService         EmailSender
	logger               *logging.Logger
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
	now                  func() time.Time
}

func NewService(
	userRepo UserRepository,
	authRepo RefreshTokenRepository,
	resetRepo ResetChallengeRepository,
	tokenService TokenService,
	emailService EmailSender,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
	refreshTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:             userRepo,
		authRepo:             authRepo,
		resetRepo:            resetRepo,
		tokenService:         tokenService,
		emailService:         emailService,
		logger:               logger,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
		now:                  time.Now,
	}
}

// Register creates a new patient account
func (s *Service) Register(ctx context.Context, name, email, dob string, age int, password, confirmPassword string) (*user.User, error) {
	// Validate input
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if strings.TrimSpace(dob) == "" {
		return nil, ErrDateOfBirthRequired
	}
	if age < 0 || age > 150 {
		return nil, ErrInvalidAge
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	// Hash password using argon2id
	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user in database
	newUser, err := s.userRepo.Create(ctx, name, email, dob, age, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and returns tokens
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	// Validate input
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	// Get user from database
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Verify password
	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// Generate tokens
	tokens, err := s.generateTokens(ctx, existingUser.ID, existingUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// RefreshAccessToken generates a new access token using a refresh token
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	// Get refresh token from storage
	rt, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	// Validate refresh token
	if !rt.IsValid() {
		if rt.IsRevoked() {
			return nil, ErrRefreshTokenRevoked
		}
		if rt.IsExpired() {
			return nil, ErrRefreshTokenExpired
		}
	}

	// Revoke old refresh token before issuing new ones to prevent reuse
	if err := s.authRepo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	// Get user
	existingUser, err := s.userRepo.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Generate new tokens
	tokens, err := s.generateTokens(ctx, existingUser.ID, existingUser.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// RevokeRefreshToken revokes a refresh token
func (s *Service) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	return s.authRepo.RevokeRefreshToken(ctx, refreshToken)
}

// generateTokens creates both access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, userID uuid.UUID, email string) (*AuthTokens, error) {
	// Generate access token (short-lived)
	accessToken, err := s.tokenService.CreateToken(userID, email, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	// Generate refresh token (long-lived, random string)
	refreshToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Store refresh token
	expiresAt := s.now().Add(s.refreshTokenDuration)
	if err := s.authRepo.StoreRefreshToken(ctx, userID, refreshToken, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// hashPassword creates an argon2id hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	// Hash password with argon2id
	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	// Encode as: $argon2id$v=19$m=65536,t=3,p=4$salt$hash
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	// Parse the encoded hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	// Parse parameters
	var version int
	var memory, time uint32
	var threads uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false
	}
	_, err = fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return false
	}

	// Decode salt and hash
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Hash the input password with the same parameters
	inputHash := argon2.IDKey(
		[]byte(password),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	// Compare hashes using constant-time comparison
	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
