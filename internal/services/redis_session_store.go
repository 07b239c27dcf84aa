package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studybuddy/internal/models"
)

// RedisSessionStore keeps session history in a Redis list per session,
// for deployments that want history to survive process restarts or be
// shared across replicas. Same contract as MemorySessionStore.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return "studybuddy:session:" + sessionID
}

// AddMessage appends a message to the session's list
func (s *RedisSessionStore) AddMessage(ctx context.Context, sessionID, role, content string, metadata map[string]interface{}) error {
	msg := newMessage(role, content, metadata)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.client.RPush(ctx, sessionKey(sessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// History returns the session's messages in insertion order
func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]models.Message, error) {
	entries, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}

	history := make([]models.Message, 0, len(entries))
	for _, entry := range entries {
		var msg models.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		history = append(history, msg)
	}
	return history, nil
}

// Clear removes the session's list and reports whether it existed
func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) (bool, error) {
	deleted, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to clear session: %w", err)
	}
	return deleted > 0, nil
}

// Context renders the most recent messages as a transcript
func (s *RedisSessionStore) Context(ctx context.Context, sessionID string, maxMessages int) (string, error) {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return formatConversation(history, maxMessages), nil
}

// Info returns derived session statistics
func (s *RedisSessionStore) Info(ctx context.Context, sessionID string) (*models.SessionInfo, error) {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfoFromHistory(sessionID, history), nil
}
