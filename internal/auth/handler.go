package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
	"patienthelpdesk/internal/ratelimit"
	"patienthelpdesk/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service         *Service
	rateLimiter     *ratelimit.Limiter
	sessions        SessionInvalidator
	logger          *logging.Logger
	isProduction    bool
	accessDuration  time.Duration
	refreshDuration time.Duration
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, sessions SessionInvalidator, logger *logging.Logger, isProduction bool, accessDuration, refreshDuration time.Duration) *Handler {
	return &Handler{
		service:         service,
		rateLimiter:     rateLimiter,
		sessions:        sessions,
		logger:          logger,
		isProduction:    isProduction,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

// RegisterRequest represents the sign-up request body
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	DateOfBirth     string `json:"dob"`
	Age             int    `json:"age"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RegisterResponse represents the sign-up response
type RegisterResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

// ForgotPasswordRequest represents the reset-code request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the emailed code and the new password pair
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register handles patient sign-up
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	// Record IP request for rate limiting
	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	newUser, err := h.service.Register(r.Context(), req.Name, req.Email, req.DateOfBirth, req.Age, req.Password, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already registered")
			respondError(w, "email already registered", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		if code, ok := validationCode(err); ok {
			logger.Warn("registration failed: validation error", "error", err.Error())
			respondError(w, err.Error(), code, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		respondError(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	respondJSON(w, RegisterResponse{
		User: UserResponse{
			ID:    newUser.ID,
			Name:  newUser.Name,
			Email: newUser.Email,
		},
		Message: "Account signed up successfully.",
	}, http.StatusCreated)
}

// Login handles user login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	// Record IP request for rate limiting
	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			respondError(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		respondError(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully")

	// Set cookies if request is from browser
	if ShouldUseCookies(r) {
		SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken, h.isProduction, h.accessDuration, h.refreshDuration)
		// Don't return tokens in response body when using cookies
		respondJSON(w, map[string]string{
			"message": "logged in successfully",
		}, http.StatusOK)
	} else {
		// Return tokens in response body for non-browser clients
		respondJSON(w, tokens, http.StatusOK)
	}
}

// Refresh handles access token refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Try to get refresh token from JSON body first
	var refreshToken string
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		refreshToken = req.RefreshToken
	}

	// Fallback to cookie if body empty/invalid
	if refreshToken == "" {
		cookieToken, err := GetRefreshTokenFromCookie(r)
		if err == nil {
			refreshToken = cookieToken
		}
	}

	if refreshToken == "" {
		logger.Warn("refresh token missing from both body and cookie")
		respondError(w, "refresh token required", httputil.CodeRefreshTokenRequired, http.StatusBadRequest)
		return
	}

	// Trim whitespace that might have been accidentally added
	refreshToken = strings.TrimSpace(refreshToken)

	tokens, err := h.service.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrRefreshTokenRevoked) || errors.Is(err, ErrRefreshTokenExpired) {
			logger.Warn("token refresh failed: invalid or expired token", "error", err.Error())
			respondError(w, "invalid or expired refresh token", httputil.CodeInvalidRefreshToken, http.StatusUnauthorized)
			return
		}
		logger.Error("token refresh failed: internal error", "error", err.Error())
		respondError(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("access token refreshed successfully")

	// Set cookies if request is from browser
	if ShouldUseCookies(r) {
		SetAuthCookies(w, tokens.AccessToken, tokens.RefreshToken, h.isProduction, h.accessDuration, h.refreshDuration)
		respondJSON(w, map[string]string{
			"message": "token refreshed successfully",
		}, http.StatusOK)
	} else {
		respondJSON(w, tokens, http.StatusOK)
	}
}

// Logout revokes the refresh token, clears cookies, and resets the
// caller's session state (page back to home, chat transcript dropped)
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Get refresh token from either source
	var refreshToken string
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		cookieToken, _ := GetRefreshTokenFromCookie(r)
		refreshToken = cookieToken
	}

	// Revoke refresh token if provided
	if refreshToken != "" {
		if err := h.service.RevokeRefreshToken(r.Context(), refreshToken); err != nil {
			logger.Warn("failed to revoke refresh token", "error", err)
			// Continue - still clear cookies
		}
	}

	// Drop session state for the authenticated caller
	if userID, ok := GetUserIDFromContext(r.Context()); ok && h.sessions != nil {
		if err := h.sessions.Invalidate(r.Context(), userID); err != nil {
			logger.Warn("failed to invalidate session", "error", err)
		}
	}

	// Clear cookies
	ClearAuthCookies(w)

	logger.Info("user logged out successfully")

	respondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// ForgotPassword issues a 6-digit reset code to a registered email
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	// Get client IP for rate limiting
	ip := getClientIP(r)

	// Check IP rate limit (10 req/15 min)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		// Continue despite error to avoid blocking legitimate requests
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip)
		respondError(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	// Check email cooldown (2 min)
	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
		// Continue despite error
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", req.Email)
		respondError(w, "please wait before requesting another reset code", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	// Record IP request for rate limiting
	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, ErrEmailNotFound) {
			logger.Warn("reset request failed: email not found")
			respondError(w, "email not found", httputil.CodeEmailNotFound, http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrEmailRequired) {
			respondError(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrDeliveryFailure) {
			logger.Error("reset request failed: delivery failure")
			respondError(w, "failed to send reset code email", httputil.CodeDeliveryFailure, http.StatusBadGateway)
			return
		}
		logger.Error("reset request failed: internal error", "error", err.Error())
		respondError(w, "failed to request password reset", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// Set email cooldown only after a code actually went out
	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	respondJSON(w, map[string]string{
		"message": "A 6-digit reset code has been sent to your email. It is valid for 10 minutes.",
	}, http.StatusOK)
}

// ResetPassword resolves the reset challenge and overwrites the password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		respondError(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	err := h.service.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredCode) {
			logger.Warn("password reset failed: invalid or expired code")
			respondError(w, "invalid or expired code", httputil.CodeInvalidResetCode, http.StatusBadRequest)
			return
		}
		if code, ok := validationCode(err); ok {
			logger.Warn("password reset failed: validation error", "error", err.Error())
			respondError(w, err.Error(), code, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		respondError(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset successfully")

	respondJSON(w, map[string]string{
		"message": "Password reset successfully. You can now login with your new password.",
	}, http.StatusOK)
}

// validationCode maps a validation sentinel to its machine-readable code
func validationCode(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrNameRequired):
		return httputil.CodeNameRequired, true
	case errors.Is(err, ErrEmailRequired):
		return httputil.CodeEmailRequired, true
	case errors.Is(err, ErrInvalidEmailFormat):
		return httputil.CodeInvalidEmailFormat, true
	case errors.Is(err, ErrDateOfBirthRequired):
		return httputil.CodeDateOfBirthRequired, true
	case errors.Is(err, ErrInvalidAge):
		return httputil.CodeInvalidAge, true
	case errors.Is(err, ErrPasswordRequired):
		return httputil.CodePasswordRequired, true
	case errors.Is(err, ErrPasswordTooShort):
		return httputil.CodePasswordTooShort, true
	case errors.Is(err, ErrPasswordMismatch):
		return httputil.CodePasswordMismatch, true
	}
	return "", false
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data any, statusCode int) {
	httputil.RespondJSON(w, data, statusCode)
}

// respondError sends an error response with a machine-readable code
func respondError(w http.ResponseWriter, message string, code string, statusCode int) {
	httputil.RespondErrorWithCode(w, message, code, statusCode)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
