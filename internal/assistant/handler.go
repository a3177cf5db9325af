package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"patienthelpdesk/internal/auth"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
)

// TranscriptStore persists the running chat transcript per user session
type TranscriptStore interface {
	History(ctx context.Context, userID uuid.UUID) ([]Turn, error)
	Append(ctx context.Context, userID uuid.UUID, turns ...Turn) error
}

// Handler exposes the assistant chat endpoint
type Handler struct {
	gateway     *Gateway
	transcripts TranscriptStore
	logger      *logging.Logger
}

func NewHandler(gateway *Gateway, transcripts TranscriptStore, logger *logging.Logger) *Handler {
	return &Handler{
		gateway:     gateway,
		transcripts: transcripts,
		logger:      logger,
	}
}

// ChatRequest carries one user utterance
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's reply. Code is set when the reply is
// the degraded apology.
type ChatResponse struct {
	Reply string `json:"reply"`
	Code  string `json:"code,omitempty"`
}

// Chat relays a user utterance plus the session transcript to the
// completion service and records both turns. A gateway failure still
// answers 200 with the static apology so the chat stays usable.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid chat request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		httputil.RespondErrorWithCode(w, "please enter a message", httputil.CodeMessageRequired, http.StatusBadRequest)
		return
	}

	history, err := h.transcripts.History(r.Context(), userID)
	if err != nil {
		logger.Error("failed to load chat transcript", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load chat history", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	reply, err := h.gateway.Reply(r.Context(), history, message)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			logger.Error("chat failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to chat", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		logger.Warn("assistant unavailable, sending apology")
		reply = ApologyReply
	}

	// Record both turns so the next utterance carries full context
	if err := h.transcripts.Append(r.Context(), userID,
		Turn{Role: "user", Content: message},
		Turn{Role: "assistant", Content: reply},
	); err != nil {
		logger.Error("failed to record chat turns", "error", err.Error())
	}

	resp := ChatResponse{Reply: reply}
	if reply == ApologyReply {
		resp.Code = httputil.CodeAssistantUnavailable
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}
