package routes

import (
	"net/http"

	"studybuddy/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers bundles everything RegisterRoutes needs to wire the API
type Handlers struct {
	Home   *handlers.HomeHandler
	Chat   *handlers.ChatHandler
	Upload *handlers.UploadHandler
	RAG    *handlers.RAGHandler
	PYQ    *handlers.PYQHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Home.Health).Methods(http.MethodGet)
	router.HandleFunc("/", h.Home.Root).Methods(http.MethodGet)

	// The API advertises /docs; the swagger UI lives under /swagger/
	router.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// General chat
	api.HandleFunc("/chat/", h.Chat.Chat).Methods(http.MethodPost)

	// Document upload and lifecycle
	api.HandleFunc("/upload/pdf", h.Upload.UploadPDF).Methods(http.MethodPost)
	api.HandleFunc("/upload/delete/{file_id}", h.Upload.DeleteDocument).Methods(http.MethodDelete)

	// Document-grounded chat and session memory
	api.HandleFunc("/rag/chat", h.RAG.Chat).Methods(http.MethodPost)
	api.HandleFunc("/rag/history/{session_id}", h.RAG.History).Methods(http.MethodGet)
	api.HandleFunc("/rag/history/{session_id}", h.RAG.ClearHistory).Methods(http.MethodDelete)

	// Question paper analysis
	api.HandleFunc("/pyq/upload", h.PYQ.Upload).Methods(http.MethodPost)
	api.HandleFunc("/pyq/analyze", h.PYQ.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/pyq/generate-mock", h.PYQ.GenerateMock).Methods(http.MethodPost)
}
