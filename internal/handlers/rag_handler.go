package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"studybuddy/internal/models"
	"studybuddy/internal/services"

	"github.com/gorilla/mux"
)

// RAGHandler handles document-grounded chat and session history
type RAGHandler struct {
	ragService *services.RAGService
	sessions   services.SessionStore
	logger     *log.Logger
}

// NewRAGHandler creates a new RAG handler
func NewRAGHandler(ragService *services.RAGService, sessions services.SessionStore, logger *log.Logger) *RAGHandler {
	return &RAGHandler{
		ragService: ragService,
		sessions:   sessions,
		logger:     logger,
	}
}

// Chat answers a question about an uploaded document
// @Summary RAG chat
// @Description Answer a question using retrieved chunks from an indexed document, with optional session memory
// @Tags rag
// @Accept json
// @Produce json
// @Param request body models.RAGChatRequest true "RAG chat request"
// @Success 200 {object} models.RAGChatResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/rag/chat [post]
func (h *RAGHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.RAGChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.FileID == "" {
		sendError(w, h.logger, http.StatusBadRequest, "file_id is required")
		return
	}
	if req.Question == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Question is required")
		return
	}
	if len(req.Question) > maxMessageLength {
		sendError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Question too long (max %d characters)", maxMessageLength))
		return
	}

	h.logger.Printf("RAG chat for %s (session=%s)", req.FileID, req.SessionID)

	result, err := h.ragService.Answer(r.Context(), req.FileID, req.Question, req.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotIndexed) {
			sendError(w, h.logger, http.StatusNotFound,
				fmt.Sprintf("Document '%s' not found. Please upload the PDF first.", req.FileID))
			return
		}
		h.logger.Printf("RAG chat failed: %v", err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Chat failed: %v", err))
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.RAGChatResponse{
		Success:      true,
		Answer:       result.Answer,
		Sources:      result.Sources,
		ContextUsed:  result.ContextUsed,
		FileID:       req.FileID,
		SessionID:    req.SessionID,
		MessageCount: result.MessageCount,
	})
}

// History returns the full transcript of a session
// @Summary Session history
// @Description Get all stored messages and summary info for a session
// @Tags rag
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} models.SessionHistoryResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/rag/history/{session_id} [get]
func (h *RAGHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	history, err := h.sessions.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Printf("History lookup failed for %s: %v", sessionID, err)
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to load session history")
		return
	}
	info, err := h.sessions.Info(r.Context(), sessionID)
	if err != nil {
		h.logger.Printf("Session info failed for %s: %v", sessionID, err)
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to load session info")
		return
	}

	if history == nil {
		history = []models.Message{}
	}
	sendJSON(w, h.logger, http.StatusOK, models.SessionHistoryResponse{
		SessionInfo: info,
		Messages:    history,
	})
}

// ClearHistory deletes a session's stored messages
// @Summary Clear session
// @Description Delete all stored messages for a session
// @Tags rag
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} models.ClearSessionResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/rag/history/{session_id} [delete]
func (h *RAGHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	cleared, err := h.sessions.Clear(r.Context(), sessionID)
	if err != nil {
		h.logger.Printf("Session clear failed for %s: %v", sessionID, err)
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to clear session")
		return
	}

	// Clearing an unknown session is not an error
	if !cleared {
		sendJSON(w, h.logger, http.StatusOK, models.ClearSessionResponse{
			Success: false,
			Message: fmt.Sprintf("Session '%s' not found", sessionID),
		})
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.ClearSessionResponse{
		Success: true,
		Message: fmt.Sprintf("Session '%s' cleared", sessionID),
	})
}
