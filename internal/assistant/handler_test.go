package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patienthelpdesk/internal/auth"
	"patienthelpdesk/internal/httputil"
	"patienthelpdesk/internal/logging"
)

type fakeTranscriptStore struct {
	turns map[uuid.UUID][]Turn
}

func newFakeTranscriptStore() *fakeTranscriptStore {
	return &fakeTranscriptStore{turns: make(map[uuid.UUID][]Turn)}
}

func (s *fakeTranscriptStore) History(_ context.Context, userID uuid.UUID) ([]Turn, error) {
	return s.turns[userID], nil
}

func (s *fakeTranscriptStore) Append(_ context.Context, userID uuid.UUID, turns ...Turn) error {
	s.turns[userID] = append(s.turns[userID], turns...)
	return nil
}

func chatRequest(t *testing.T, userID uuid.UUID, message string) *http.Request {
	t.Helper()

	body, err := json.Marshal(ChatRequest{Message: message})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/assistant/chat", strings.NewReader(string(body)))
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), auth.UserIDContextKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestChatRequiresAuth(t *testing.T) {
	handler := NewHandler(NewGateway("", logging.NewLogger(true)), newFakeTranscriptStore(), logging.NewLogger(true))

	rec := httptest.NewRecorder()
	handler.Chat(rec, chatRequest(t, uuid.Nil, "Hello"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatRequiresMessage(t *testing.T) {
	handler := NewHandler(NewGateway("", logging.NewLogger(true)), newFakeTranscriptStore(), logging.NewLogger(true))

	rec := httptest.NewRecorder()
	handler.Chat(rec, chatRequest(t, uuid.New(), "   "))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httputil.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, httputil.CodeMessageRequired, resp.Code)
}

func TestChatRelaysReplyAndRecordsTurns(t *testing.T) {
	client := &fakeChatClient{response: completionWith("Your policy covers hospitalization.")}
	store := newFakeTranscriptStore()
	handler := NewHandler(newGatewayWithClient(client, logging.NewLogger(true)), store, logging.NewLogger(true))

	userID := uuid.New()
	rec := httptest.NewRecorder()
	handler.Chat(rec, chatRequest(t, userID, "What does my policy cover?"))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Your policy covers hospitalization.", resp.Reply)
	assert.Empty(t, resp.Code)

	require.Len(t, store.turns[userID], 2)
	assert.Equal(t, Turn{Role: "user", Content: "What does my policy cover?"}, store.turns[userID][0])
	assert.Equal(t, Turn{Role: "assistant", Content: "Your policy covers hospitalization."}, store.turns[userID][1])
}

func TestChatSendsTranscriptToGateway(t *testing.T) {
	client := &fakeChatClient{response: completionWith("Sure.")}
	store := newFakeTranscriptStore()
	handler := NewHandler(newGatewayWithClient(client, logging.NewLogger(true)), store, logging.NewLogger(true))

	userID := uuid.New()
	require.NoError(t, store.Append(context.Background(), userID,
		Turn{Role: "user", Content: "Hello"},
		Turn{Role: "assistant", Content: "Hi, how can I help?"},
	))

	rec := httptest.NewRecorder()
	handler.Chat(rec, chatRequest(t, userID, "Tell me about claims"))
	require.Equal(t, http.StatusOK, rec.Code)

	// system + two prior turns + new utterance
	require.Len(t, client.lastRequest.Messages, 4)
	assert.Equal(t, "Hello", client.lastRequest.Messages[1].Content)
	assert.Equal(t, "Tell me about claims", client.lastRequest.Messages[3].Content)
}

func TestChatDegradesToApology(t *testing.T) {
	store := newFakeTranscriptStore()
	handler := NewHandler(NewGateway("", logging.NewLogger(true)), store, logging.NewLogger(true))

	userID := uuid.New()
	rec := httptest.NewRecorder()
	handler.Chat(rec, chatRequest(t, userID, "Hello"))

	// Degraded replies still answer 200 so the chat stays usable
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ApologyReply, resp.Reply)
	assert.Equal(t, httputil.CodeAssistantUnavailable, resp.Code)

	// The apology is still part of the transcript
	require.Len(t, store.turns[userID], 2)
	assert.Equal(t, ApologyReply, store.turns[userID][1].Content)
}
