package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studybuddy/internal/models"
)

// NoHistorySentinel is returned by Context for sessions with no messages
const NoHistorySentinel = "No conversation history available."

// SessionStore keeps ordered, append-only conversation history per session.
// Sessions are created implicitly by the first AddMessage. Implementations
// must be safe under concurrent access; operations on a single session_id
// are linearizable relative to each other.
type SessionStore interface {
	// AddMessage appends a message with the current timestamp
	AddMessage(ctx context.Context, sessionID, role, content string, metadata map[string]interface{}) error
	// History returns the full message list, empty if the session is unknown
	History(ctx context.Context, sessionID string) ([]models.Message, error)
	// Clear removes the session and reports whether it existed
	Clear(ctx context.Context, sessionID string) (bool, error)
	// Context renders the last maxMessages as a role-labeled transcript
	Context(ctx context.Context, sessionID string, maxMessages int) (string, error)
	// Info returns derived session statistics
	Info(ctx context.Context, sessionID string) (*models.SessionInfo, error)
}

// MemorySessionStore is the default in-process store. History lives for
// the process lifetime only and is lost on restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.Message
}

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]models.Message),
	}
}

// AddMessage appends a message, creating the session if absent
func (s *MemorySessionStore) AddMessage(_ context.Context, sessionID, role, content string, metadata map[string]interface{}) error {
	msg := newMessage(role, content, metadata)

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], msg)
	s.mu.Unlock()
	return nil
}

// History returns a copy of the session's messages in insertion order
func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionID]
	out := make([]models.Message, len(history))
	copy(out, history)
	return out, nil
}

// Clear removes the session and reports whether it existed
func (s *MemorySessionStore) Clear(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return existed, nil
}

// Context renders the most recent messages as a transcript
func (s *MemorySessionStore) Context(ctx context.Context, sessionID string, maxMessages int) (string, error) {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return formatConversation(history, maxMessages), nil
}

// Info returns derived session statistics
func (s *MemorySessionStore) Info(ctx context.Context, sessionID string) (*models.SessionInfo, error) {
	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfoFromHistory(sessionID, history), nil
}

// newMessage builds an immutable message with the current timestamp
func newMessage(role, content string, metadata map[string]interface{}) models.Message {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
		Metadata:  metadata,
	}
}

// formatConversation renders the last maxMessages as a two-role transcript,
// newest last. Shared by all SessionStore implementations.
func formatConversation(history []models.Message, maxMessages int) string {
	if len(history) == 0 {
		return NoHistorySentinel
	}

	recent := history
	if maxMessages > 0 && len(history) > maxMessages {
		recent = history[len(history)-maxMessages:]
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		role := "StudyBuddy"
		if msg.Role == models.RoleUser {
			role = "Student"
		}
		lines = append(lines, role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// sessionInfoFromHistory derives read-only statistics from a message list
func sessionInfoFromHistory(sessionID string, history []models.Message) *models.SessionInfo {
	info := &models.SessionInfo{
		SessionID:    sessionID,
		MessageCount: len(history),
	}
	for _, msg := range history {
		switch msg.Role {
		case models.RoleUser:
			info.UserMessages++
		case models.RoleAssistant:
			info.AssistantMessages++
		}
	}
	if len(history) > 0 {
		created := history[0].Timestamp
		last := history[len(history)-1].Timestamp
		info.CreatedAt = &created
		info.LastActivity = &last
	}
	return info
}
