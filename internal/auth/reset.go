package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"patienthelpdesk/internal/user"
)

// maxResetAttempts bounds guesses per challenge; the challenge is
// destroyed once the bound is hit.
const maxResetAttempts = 5

// RequestPasswordReset issues a reset challenge for a known email: a 6-digit
// code stored with its issuance time and e-mailed to the user. Unknown email
// or delivery failure leaves no outstanding challenge and reports the error.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("failed to get user for password reset: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	issuedAt := s.now()
	if err := s.resetRepo.Store(ctx, existingUser.Email, code, issuedAt); err != nil {
		return fmt.Errorf("failed to store reset challenge: %w", err)
	}

	// Delivery is synchronous: the caller must know the code never went out.
	if err := s.emailService.SendResetCode(ctx, existingUser.Email, code); err != nil {
		s.logger.Warn("failed to send reset code email", "email", existingUser.Email, "error", err)
		// Roll back to the no-challenge state
		if delErr := s.resetRepo.Delete(ctx, existingUser.Email); delErr != nil {
			s.logger.Warn("failed to delete reset challenge after send failure", "error", delErr)
		}
		return ErrDeliveryFailure
	}

	s.logger.Info("reset code issued", "email", existingUser.Email)
	return nil
}

// ConfirmPasswordReset resolves an outstanding challenge. It succeeds only
// if the code matches, the email matches the issuing request, the current
// time is strictly before issuance + 10 minutes, and the two new-password
// fields match. On success the password is overwritten and the challenge
// cleared; a code mismatch keeps the challenge alive until the attempt
// bound is hit.
func (s *Service) ConfirmPasswordReset(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	challenge, err := s.resetRepo.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrResetChallengeNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("failed to get reset challenge: %w", err)
	}

	// Strictly before expiry: a code submitted at minute 10 is already dead
	// even if the storage TTL has not reaped it yet.
	if !s.now().Before(challenge.IssuedAt.Add(resetChallengeTTL)) {
		if err := s.resetRepo.Delete(ctx, email); err != nil {
			s.logger.Warn("failed to delete expired reset challenge", "error", err)
		}
		return ErrInvalidOrExpiredCode
	}

	if challenge.Email != email ||
		subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		attempts, err := s.resetRepo.RecordFailedAttempt(ctx, email)
		if err != nil {
			s.logger.Warn("failed to record reset attempt", "error", err)
		} else if attempts >= maxResetAttempts {
			s.logger.Warn("reset challenge exhausted", "email", email)
			if err := s.resetRepo.Delete(ctx, email); err != nil {
				s.logger.Warn("failed to delete exhausted reset challenge", "error", err)
			}
		}
		return ErrInvalidOrExpiredCode
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordByEmail(ctx, email, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Challenge is consumed exactly once
	if err := s.resetRepo.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete used reset challenge", "error", err)
	}

	// Revoke all refresh tokens for security
	if existingUser, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		if err := s.authRepo.RevokeAllUserTokens(ctx, existingUser.ID); err != nil {
			s.logger.Warn("failed to revoke all user tokens after password reset", "error", err)
		}
	}

	s.logger.Info("password reset successfully", "email", email)
	return nil
}
