package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"studybuddy/internal/models"
	"studybuddy/internal/services"
)

const maxMessageLength = 500

// ChatHandler handles plain (non-RAG) tutor chat requests
type ChatHandler struct {
	llm    services.LLMClient
	model  string
	logger *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(llm services.LLMClient, model string, logger *log.Logger) *ChatHandler {
	return &ChatHandler{llm: llm, model: model, logger: logger}
}

// Chat answers a general study question without document context
// @Summary General chat
// @Description Ask the AI tutor a question without document grounding
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Chat request"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/chat/ [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Message == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Message is required")
		return
	}
	if len(req.Message) > maxMessageLength {
		sendError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Message too long (max %d characters)", maxMessageLength))
		return
	}

	if h.llm == nil {
		sendError(w, h.logger, http.StatusInternalServerError,
			fmt.Sprintf("Configuration error: %v", services.ErrMissingAPIKey))
		return
	}

	h.logger.Printf("Chat request (session=%s, %d chars)", req.SessionID, len(req.Message))

	prompt := fmt.Sprintf(`You are StudyBuddy, a helpful AI tutor. Answer the student's question clearly and concisely.

Question: %s

Answer:`, req.Message)

	answer, err := h.llm.Complete(r.Context(), prompt)
	if err != nil {
		if errors.Is(err, services.ErrMissingAPIKey) {
			sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Configuration error: %v", err))
			return
		}
		h.logger.Printf("Chat completion failed: %v", err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Chat failed: %v", err))
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.ChatResponse{
		Success:   true,
		Answer:    answer,
		SessionID: req.SessionID,
		Metadata: map[string]interface{}{
			"status": "ai_powered",
			"model":  h.model,
		},
	})
}
