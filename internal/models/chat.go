package models

// ChatRequest is the body of POST /api/v1/chat/
type ChatRequest struct {
	Message   string `json:"message"`    // The current user message (1-500 chars)
	SessionID string `json:"session_id"` // Opaque client-supplied session identifier
}

// ChatResponse is the reply to a plain (non-RAG) chat request
type ChatResponse struct {
	Success   bool                   `json:"success"`
	Answer    string                 `json:"answer"`
	SessionID string                 `json:"session_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// RAGChatRequest is the body of POST /api/v1/rag/chat
type RAGChatRequest struct {
	FileID    string `json:"file_id"`              // ID returned by the upload endpoint
	Question  string `json:"question"`             // Question about the document (1-500 chars)
	SessionID string `json:"session_id,omitempty"` // Optional conversation memory key
}

// Source is a retrieved chunk reduced for the response payload
type Source struct {
	ChunkID        int     `json:"chunk_id"`        // Chunk index within the document
	ContentPreview string  `json:"content_preview"` // First 200 chars of the chunk
	Similarity     float64 `json:"similarity"`      // Score as reported by the vector store
}

// RAGChatResponse is the reply to a RAG chat request
type RAGChatResponse struct {
	Success      bool     `json:"success"`
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	ContextUsed  int      `json:"context_used"`
	FileID       string   `json:"file_id"`
	SessionID    string   `json:"session_id,omitempty"`
	MessageCount int      `json:"message_count,omitempty"`
}
