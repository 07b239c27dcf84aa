package models

// Message is a single entry in a conversation. Messages are append-only:
// once stored in a session they are never mutated.
type Message struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`      // "user" or "assistant"
	Content   string                 `json:"content"`   // The message text
	Timestamp string                 `json:"timestamp"` // ISO-8601 creation time
	Metadata  map[string]interface{} `json:"metadata"`  // Free-form (file_id, sources, etc.)
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionInfo is a derived, read-only view of a session.
// CreatedAt and LastActivity are nil when the session has no history.
type SessionInfo struct {
	SessionID         string  `json:"session_id"`
	MessageCount      int     `json:"message_count"`
	UserMessages      int     `json:"user_messages"`
	AssistantMessages int     `json:"assistant_messages"`
	CreatedAt         *string `json:"created_at"`
	LastActivity      *string `json:"last_activity"`
}

// SessionHistoryResponse is returned by GET /api/v1/rag/history/{session_id}
type SessionHistoryResponse struct {
	SessionInfo *SessionInfo `json:"session_info"`
	Messages    []Message    `json:"messages"`
}

// ClearSessionResponse is returned by DELETE /api/v1/rag/history/{session_id}.
// Success is false when no history existed for the session.
type ClearSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
