package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ipWindow and ipLimit implement a fixed window of 10 requests per 15
	// minutes for sensitive endpoints.
	ipWindow = 15 * time.Minute
	ipLimit  = 10

	// emailCooldown spaces out repeated reset-code requests per address.
	emailCooldown = 2 * time.Minute

	defaultPurpose = "default"
)

// Limiter implements fixed-window rate limiting backed by Redis counters
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:ip:%s:%s", purpose, ip)
}

// emailCooldownKey hashes the address so raw emails never appear in key
// listings.
func emailCooldownKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return fmt.Sprintf("ratelimit:email_cooldown:%s", hex.EncodeToString(sum[:]))
}

// CheckIPRateLimit reports whether the IP has exhausted the default window
func (l *Limiter) CheckIPRateLimit(ctx context.Context, ip string) (bool, error) {
	return l.CheckIPRateLimitWithPurpose(ctx, ip, defaultPurpose)
}

// CheckIPRateLimitWithPurpose reports whether the IP has exhausted the
// window for a specific purpose (login, register, ...)
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= ipLimit, nil
}

// RecordIPRequest counts a request against the default window
func (l *Limiter) RecordIPRequest(ctx context.Context, ip string) error {
	return l.RecordIPRequestWithPurpose(ctx, ip, defaultPurpose)
}

// RecordIPRequestWithPurpose counts a request against a purpose window.
// The window starts with the first request and is not sliding.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// First request in the window sets the expiry
	if count == 1 {
		if err := l.client.Expire(ctx, key, ipWindow).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}

// CheckEmailCooldown reports whether the address asked for a code too recently
func (l *Limiter) CheckEmailCooldown(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, emailCooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check email cooldown: %w", err)
	}
	return exists > 0, nil
}

// SetEmailCooldown starts the per-address cooldown
func (l *Limiter) SetEmailCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, emailCooldownKey(email), "1", emailCooldown).Err(); err != nil {
		return fmt.Errorf("failed to set email cooldown: %w", err)
	}
	return nil
}
