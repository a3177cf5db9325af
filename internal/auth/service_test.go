package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patienthelpdesk/internal/logging"
	"patienthelpdesk/internal/user"
)

type fakeUserRepo struct {
	usersByEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{usersByEmail: make(map[string]*user.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, name, email, dob string, age int, passwordHash string) (*user.User, error) {
	if _, ok := r.usersByEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		DateOfBirth:  dob,
		Age:          age,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.usersByEmail[email] = u
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.usersByEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range r.usersByEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) UpdatePasswordByEmail(_ context.Context, email, passwordHash string) error {
	u, ok := r.usersByEmail[email]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeRefreshTokenRepo struct {
	tokens  map[string]*RefreshToken
	revoked map[uuid.UUID]bool
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{
		tokens:  make(map[string]*RefreshToken),
		revoked: make(map[uuid.UUID]bool),
	}
}

func (r *fakeRefreshTokenRepo) StoreRefreshToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	r.tokens[token] = &RefreshToken{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (r *fakeRefreshTokenRepo) GetRefreshToken(_ context.Context, token string) (*RefreshToken, error) {
	rt, ok := r.tokens[token]
	if !ok {
		return nil, ErrRefreshTokenNotFound
	}
	return rt, nil
}

func (r *fakeRefreshTokenRepo) RevokeRefreshToken(_ context.Context, token string) error {
	rt, ok := r.tokens[token]
	if !ok {
		return ErrRefreshTokenNotFound
	}
	now := time.Now()
	rt.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	r.revoked[userID] = true
	for _, rt := range r.tokens {
		if rt.UserID == userID && rt.RevokedAt == nil {
			now := time.Now()
			rt.RevokedAt = &now
		}
	}
	return nil
}

type fakeResetChallengeRepo struct {
	challenges map[string]*ResetChallenge
}

func newFakeResetChallengeRepo() *fakeResetChallengeRepo {
	return &fakeResetChallengeRepo{challenges: make(map[string]*ResetChallenge)}
}

func (r *fakeResetChallengeRepo) Store(_ context.Context, email, code string, issuedAt time.Time) error {
	r.challenges[email] = &ResetChallenge{
		Email:    email,
		Code:     code,
		IssuedAt: issuedAt,
	}
	return nil
}

func (r *fakeResetChallengeRepo) Get(_ context.Context, email string) (*ResetChallenge, error) {
	c, ok := r.challenges[email]
	if !ok {
		return nil, ErrResetChallengeNotFound
	}
	return c, nil
}

func (r *fakeResetChallengeRepo) RecordFailedAttempt(_ context.Context, email string) (int64, error) {
	c, ok := r.challenges[email]
	if !ok {
		return 0, ErrResetChallengeNotFound
	}
	c.Attempts++
	return c.Attempts, nil
}

func (r *fakeResetChallengeRepo) Delete(_ context.Context, email string) error {
	delete(r.challenges, email)
	return nil
}

type fakeEmailSender struct {
	sentTo   []string
	lastCode string
	err      error
}

func (s *fakeEmailSender) SendResetCode(_ context.Context, toEmail, code string) error {
	if s.err != nil {
		return s.err
	}
	s.sentTo = append(s.sentTo, toEmail)
	s.lastCode = code
	return nil
}

type serviceFixture struct {
	service   *Service
	userRepo  *fakeUserRepo
	tokens    *fakeRefreshTokenRepo
	resets    *fakeResetChallengeRepo
	emails    *fakeEmailSender
	pasetoSvc *PasetoService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	pasetoSvc, err := NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	userRepo := newFakeUserRepo()
	tokens := newFakeRefreshTokenRepo()
	resets := newFakeResetChallengeRepo()
	emails := &fakeEmailSender{}

	svc := NewService(
		userRepo,
		tokens,
		resets,
		pasetoSvc,
		emails,
		logging.NewLogger(true),
		15*time.Minute,
		7*24*time.Hour,
	)

	return &serviceFixture{
		service:   svc,
		userRepo:  userRepo,
		tokens:    tokens,
		resets:    resets,
		emails:    emails,
		pasetoSvc: pasetoSvc,
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name            string
		userName        string
		email           string
		dob             string
		age             int
		password        string
		confirmPassword string
		wantErr         error
	}{
		{"missing name", "", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpass", ErrNameRequired},
		{"missing email", "Jane Doe", "", "1995-04-12", 31, "s3cretpass", "s3cretpass", ErrEmailRequired},
		{"bad email format", "Jane Doe", "not-an-email", "1995-04-12", 31, "s3cretpass", "s3cretpass", ErrInvalidEmailFormat},
		{"missing dob", "Jane Doe", "jane@example.com", "", 31, "s3cretpass", "s3cretpass", ErrDateOfBirthRequired},
		{"negative age", "Jane Doe", "jane@example.com", "1995-04-12", -1, "s3cretpass", "s3cretpass", ErrInvalidAge},
		{"implausible age", "Jane Doe", "jane@example.com", "1995-04-12", 151, "s3cretpass", "s3cretpass", ErrInvalidAge},
		{"missing password", "Jane Doe", "jane@example.com", "1995-04-12", 31, "", "", ErrPasswordRequired},
		{"short password", "Jane Doe", "jane@example.com", "1995-04-12", 31, "short", "short", ErrPasswordTooShort},
		{"confirmation mismatch", "Jane Doe", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpas5", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			_, err := f.service.Register(context.Background(), tt.userName, tt.email, tt.dob, tt.age, tt.password, tt.confirmPassword)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterThenLogin(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.service.Register(ctx, "Jane Doe", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "s3cretpass", created.PasswordHash)

	tokens, err := f.service.Login(ctx, "jane@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	claims, err := f.pasetoSvc.VerifyToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, "Jane Doe", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpass")
	require.NoError(t, err)

	_, err = f.service.Register(ctx, "Other Jane", "jane@example.com", "1990-01-01", 36, "otherpass1", "otherpass1")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, "Jane Doe", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpass")
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "jane@example.com", "wrongpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.service.Login(context.Background(), "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAccessTokenRotatesToken(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, "Jane Doe", "jane@example.com", "1995-04-12", 31, "s3cretpass", "s3cretpass")
	require.NoError(t, err)

	tokens, err := f.service.Login(ctx, "jane@example.com", "s3cretpass")
	require.NoError(t, err)

	refreshed, err := f.service.RefreshAccessToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// A rotated refresh token must not be usable twice
	_, err = f.service.RefreshAccessToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	f := newServiceFixture(t)

	hash, err := f.service.hashPassword("s3cretpass")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.True(t, f.service.verifyPassword(hash, "s3cretpass"))
	assert.False(t, f.service.verifyPassword(hash, "s3cretpas5"))
	assert.False(t, f.service.verifyPassword("not-a-hash", "s3cretpass"))
}
