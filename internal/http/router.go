package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"patienthelpdesk/internal/assistant"
	"patienthelpdesk/internal/auth"
	"patienthelpdesk/internal/config"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/inquiry"
	"patienthelpdesk/internal/logging"
	"patienthelpdesk/internal/session"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	inquiryHandler *inquiry.Handler,
	assistantHandler *assistant.Handler,
	sessionHandler *session.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
			ExposedHeaders:   []string{"Content-Length", "X-Session-ID"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Auth routes (public; logout reads the caller identity when present)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuth)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Page state routes: reachable before login, identity attached when present
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.OptionalAuth)
		r.Get("/session", sessionHandler.Current)
		r.Post("/session/navigate", sessionHandler.Navigate)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Route("/inquiries", func(r chi.Router) {
			r.Post("/policy", inquiryHandler.SubmitPolicy)
			r.Get("/policy", inquiryHandler.ListPolicy)
			r.Post("/denied", inquiryHandler.SubmitDenied)
			r.Get("/denied", inquiryHandler.ListDenied)
		})

		r.Post("/assistant/chat", assistantHandler.Chat)
	})

	return r
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
