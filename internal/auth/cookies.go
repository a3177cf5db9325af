package auth

import (
	"net/http"
	"strings"
	"time"
)

const (
	accessTokenCookieName  = "access_token"
	refreshTokenCookieName = "refresh_token"
)

// ShouldUseCookies reports whether the client is a browser that expects
// cookie auth rather than tokens in the response body.
func ShouldUseCookies(r *http.Request) bool {
	// Explicit opt-in wins
	if r.Header.Get("X-Use-Cookies") == "true" {
		return true
	}
	// Heuristic: browsers send an Accept header with text/html
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// SetAuthCookies writes access and refresh tokens as HttpOnly cookies
func SetAuthCookies(w http.ResponseWriter, accessToken, refreshToken string, secure bool, accessDuration, refreshDuration time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(accessDuration.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    refreshToken,
		Path:     "/auth",
		MaxAge:   int(refreshDuration.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookies expires both auth cookies
func ClearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// GetAccessTokenFromCookie reads the access token cookie
func GetAccessTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(accessTokenCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// GetRefreshTokenFromCookie reads the refresh token cookie
func GetRefreshTokenFromCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshTokenCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
