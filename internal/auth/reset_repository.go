package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// resetChallengeTTL is how long a 6-digit code stays valid after issuance.
const resetChallengeTTL = 10 * time.Minute

var ErrResetChallengeNotFound = errors.New("reset challenge not found")

// RedisResetChallengeRepository stores reset challenges in Redis, one per
// email. Issuing a new challenge overwrites any outstanding one, and the
// key TTL reaps abandoned challenges.
type RedisResetChallengeRepository struct {
	client *redis.Client
}

func NewRedisResetChallengeRepository(client *redis.Client) *RedisResetChallengeRepository {
	return &RedisResetChallengeRepository{client: client}
}

// resetChallengeKey generates the Redis key for an email's challenge.
// The email is hashed so raw addresses never appear in key listings.
func resetChallengeKey(email string) string {
	return fmt.Sprintf("reset_challenge:%s", hashToken(email))
}

// Store writes a fresh challenge, replacing any outstanding one
func (r *RedisResetChallengeRepository) Store(ctx context.Context, email, code string, issuedAt time.Time) error {
	key := resetChallengeKey(email)

	pipe := r.client.Pipeline()
	pipe.Del(ctx, key) // drop any previous challenge, including its attempt counter
	pipe.HSet(ctx, key, map[string]interface{}{
		"email":     email,
		"code":      code,
		"issued_at": issuedAt.Unix(),
		"attempts":  0,
	})
	pipe.Expire(ctx, key, resetChallengeTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store reset challenge: %w", err)
	}

	return nil
}

// Get retrieves the outstanding challenge for an email
func (r *RedisResetChallengeRepository) Get(ctx context.Context, email string) (*ResetChallenge, error) {
	key := resetChallengeKey(email)

	data, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reset challenge: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrResetChallengeNotFound
	}

	issuedAtUnix, err := strconv.ParseInt(data["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse challenge issuance time: %w", err)
	}

	attempts, _ := strconv.ParseInt(data["attempts"], 10, 64)

	return &ResetChallenge{
		Email:    data["email"],
		Code:     data["code"],
		IssuedAt: time.Unix(issuedAtUnix, 0),
		Attempts: attempts,
	}, nil
}

// RecordFailedAttempt increments the guess counter and returns the new total
func (r *RedisResetChallengeRepository) RecordFailedAttempt(ctx context.Context, email string) (int64, error) {
	key := resetChallengeKey(email)

	attempts, err := r.client.HIncrBy(ctx, key, "attempts", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to record reset attempt: %w", err)
	}

	return attempts, nil
}

// Delete removes a consumed or exhausted challenge
func (r *RedisResetChallengeRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, resetChallengeKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete reset challenge: %w", err)
	}
	return nil
}
