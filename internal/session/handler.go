package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"patienthelpdesk/internal/auth"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
)

// anonSessionHeader carries the anonymous visitor id; the server assigns
// one on first contact and echoes it back.
const anonSessionHeader = "X-Session-ID"

// Handler exposes the page state machine over HTTP
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// NavigateRequest names the page a navigation action targets
type NavigateRequest struct {
	Page string `json:"page"`
}

// StateResponse is the session state surfaced to the client
type StateResponse struct {
	Page          Page `json:"page"`
	Authenticated bool `json:"authenticated"`
}

// resolveKey identifies the caller's session: authenticated users by their
// user id, anonymous visitors by a server-assigned id echoed in a header.
func (h *Handler) resolveKey(w http.ResponseWriter, r *http.Request) (key string, authenticated bool) {
	if userID, ok := auth.GetUserIDFromContext(r.Context()); ok {
		return UserKey(userID), true
	}

	id := r.Header.Get(anonSessionHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	w.Header().Set(anonSessionHeader, id)
	return AnonKey(id), false
}

// Current returns the caller's page state, creating a default session if
// none exists yet
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	key, authenticated := h.resolveKey(w, r)

	state, err := h.store.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Error("failed to load session", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to load session", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		state = &State{Page: DefaultPage(authenticated)}
	}

	httputil.RespondJSON(w, StateResponse{
		Page:          state.Page,
		Authenticated: authenticated,
	}, http.StatusOK)
}

// Navigate performs an explicit navigation action
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid navigate request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	target, err := ParsePage(req.Page)
	if err != nil {
		logger.Warn("navigation rejected: unknown page", "page", req.Page)
		httputil.RespondErrorWithCode(w, "unknown page", httputil.CodeInvalidPage, http.StatusBadRequest)
		return
	}

	key, authenticated := h.resolveKey(w, r)

	state, err := h.store.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			logger.Error("failed to load session", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to load session", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		state = &State{Page: DefaultPage(authenticated)}
	}

	next, err := Navigate(state.Page, target, authenticated)
	if err != nil {
		switch {
		case errors.Is(err, ErrLoginRequired):
			logger.Warn("navigation rejected: login required", "page", target)
			httputil.RespondErrorWithCode(w, "login required", httputil.CodeLoginRequired, http.StatusForbidden)
		case errors.Is(err, ErrInvalidPage), errors.Is(err, ErrNotNavigable):
			logger.Warn("navigation rejected", "from", state.Page, "to", target)
			httputil.RespondErrorWithCode(w, "page not reachable", httputil.CodeInvalidPage, http.StatusUnprocessableEntity)
		default:
			logger.Error("navigation failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to navigate", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	state.Page = next
	if err := h.store.Save(r.Context(), key, state); err != nil {
		logger.Error("failed to save session", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to save session", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, StateResponse{
		Page:          next,
		Authenticated: authenticated,
	}, http.StatusOK)
}
