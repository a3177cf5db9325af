package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"patienthelpdesk/internal/assistant"
)

// sessionTTL reaps abandoned sessions; every save refreshes it.
const sessionTTL = 24 * time.Hour

var ErrSessionNotFound = errors.New("session not found")

// State is the per-session context: the current page and the running chat
// transcript. It replaces the process-wide globals of a single-user UI.
type State struct {
	Page Page             `json:"page"`
	Chat []assistant.Turn `json:"chat,omitempty"`
}

// Store persists session state in Redis, keyed per user or per anonymous
// visitor.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// UserKey addresses the session of an authenticated user
func UserKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s", userID.String())
}

// AnonKey addresses the session of an anonymous visitor
func AnonKey(id string) string {
	return fmt.Sprintf("anon:%s", id)
}

func sessionKey(key string) string {
	return fmt.Sprintf("session:%s", key)
}

// Get loads session state; ErrSessionNotFound when none exists
func (s *Store) Get(ctx context.Context, key string) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	return &state, nil
}

// Save writes session state and refreshes its TTL
func (s *Store) Save(ctx context.Context, key string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(key), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Invalidate drops a user's session on logout: page and chat transcript are
// gone with the key.
func (s *Store) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(UserKey(userID))).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// History returns the chat transcript for a user session
func (s *Store) History(ctx context.Context, userID uuid.UUID) ([]assistant.Turn, error) {
	state, err := s.Get(ctx, UserKey(userID))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return state.Chat, nil
}

// Append adds turns to a user session's chat transcript, creating the
// session at its default page if none exists
func (s *Store) Append(ctx context.Context, userID uuid.UUID, turns ...assistant.Turn) error {
	key := UserKey(userID)

	state, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		state = &State{Page: DefaultPage(true)}
	}

	state.Chat = append(state.Chat, turns...)
	return s.Save(ctx, key, state)
}
