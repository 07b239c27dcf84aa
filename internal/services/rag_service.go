package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"studybuddy/internal/models"
)

// ChunkRetriever is the slice of the vector index the orchestrator needs
type ChunkRetriever interface {
	Search(ctx context.Context, fileID, query string, k int) ([]models.RetrievedChunk, error)
}

// How much to retrieve and remember per answer
const (
	ragTopK           = 3
	ragMaxHistory     = 6
	sourcePreviewLen  = 200
	notFoundAnswer    = "I couldn't find relevant information in the document to answer this question."
)

// RAGService answers questions about an indexed document: it retrieves the
// most relevant chunks, assembles a context+history+question prompt and
// hands it to the LLM.
type RAGService struct {
	retriever ChunkRetriever
	llm       LLMClient
	sessions  SessionStore
	logger    *log.Logger
}

// NewRAGService creates the RAG orchestrator
func NewRAGService(retriever ChunkRetriever, llm LLMClient, sessions SessionStore, logger *log.Logger) *RAGService {
	return &RAGService{
		retriever: retriever,
		llm:       llm,
		sessions:  sessions,
		logger:    logger,
	}
}

// RAGResult is what Answer produces
type RAGResult struct {
	Answer       string
	Sources      []models.Source
	ContextUsed  int
	MessageCount int
}

// Answer retrieves context for the question and generates an answer.
// With a session_id, recent conversation history is woven into the prompt
// and both the question and the answer are recorded in the session.
func (s *RAGService) Answer(ctx context.Context, fileID, question, sessionID string) (*RAGResult, error) {
	// Conversation context is read before the new question is recorded,
	// so the transcript never duplicates it.
	conversation := ""
	if sessionID != "" {
		var err error
		conversation, err = s.sessions.Context(ctx, sessionID, ragMaxHistory)
		if err != nil {
			return nil, fmt.Errorf("Error in RAG: %w", err)
		}

		// The user's message is recorded before generation; a failed
		// generation still leaves it in history.
		if err := s.sessions.AddMessage(ctx, sessionID, models.RoleUser, question, map[string]interface{}{
			"file_id": fileID,
		}); err != nil {
			return nil, fmt.Errorf("Error in RAG: %w", err)
		}
	}

	chunks, err := s.retriever.Search(ctx, fileID, question, ragTopK)
	if err != nil {
		if errors.Is(err, ErrDocumentNotIndexed) {
			return nil, err
		}
		return nil, fmt.Errorf("Error in RAG: %w", err)
	}

	if len(chunks) == 0 {
		s.logger.Printf("No relevant chunks for %q in %s", question, fileID)
		result := &RAGResult{
			Answer:      notFoundAnswer,
			Sources:     []models.Source{},
			ContextUsed: 0,
		}
		return s.finish(ctx, sessionID, fileID, result)
	}

	if s.llm == nil {
		return nil, ErrMissingAPIKey
	}

	prompt := s.buildPrompt(question, conversation, chunks)

	answer, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("Error in RAG: %w", err)
	}

	sources := make([]models.Source, 0, len(chunks))
	for _, chunk := range chunks {
		sources = append(sources, models.Source{
			ChunkID:        chunk.ChunkIndex,
			ContentPreview: previewText(chunk.Content, sourcePreviewLen),
			Similarity:     chunk.Similarity,
		})
	}

	result := &RAGResult{
		Answer:      answer,
		Sources:     sources,
		ContextUsed: len(chunks),
	}
	return s.finish(ctx, sessionID, fileID, result)
}

// finish records the assistant's answer (when a session is active) and
// fills in the session message count.
func (s *RAGService) finish(ctx context.Context, sessionID, fileID string, result *RAGResult) (*RAGResult, error) {
	if sessionID == "" {
		return result, nil
	}

	sourceIndexes := make([]int, 0, len(result.Sources))
	for _, src := range result.Sources {
		sourceIndexes = append(sourceIndexes, src.ChunkID)
	}
	err := s.sessions.AddMessage(ctx, sessionID, models.RoleAssistant, result.Answer, map[string]interface{}{
		"file_id":      fileID,
		"sources":      sourceIndexes,
		"context_used": result.ContextUsed,
	})
	if err != nil {
		return nil, fmt.Errorf("Error in RAG: %w", err)
	}

	info, err := s.sessions.Info(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("Error in RAG: %w", err)
	}
	result.MessageCount = info.MessageCount
	return result, nil
}

// buildPrompt assembles persona + optional transcript + instructions +
// labeled context + the current question into a single prompt.
func (s *RAGService) buildPrompt(question, conversation string, chunks []models.RetrievedChunk) string {
	labeled := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		labeled = append(labeled, fmt.Sprintf("[Chunk %d]: %s", chunk.ChunkIndex, chunk.Content))
	}
	contextBlock := strings.Join(labeled, "\n\n")

	var b strings.Builder
	b.WriteString("You are StudyBuddy, an AI tutor helping students understand their study materials.\n\n")

	if conversation != "" && conversation != NoHistorySentinel {
		b.WriteString("PREVIOUS CONVERSATION:\n")
		b.WriteString(conversation)
		b.WriteString("\n\n")
	}

	b.WriteString("Use the following context from the student's document to answer their question. ")
	b.WriteString("The question may be a follow-up to the conversation above. ")
	b.WriteString("If the answer is not in the context, say so.\n\n")
	b.WriteString("CONTEXT:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nANSWER (be clear, concise, and helpful):")

	return b.String()
}

// previewText truncates to n characters and marks the truncation
func previewText(text string, n int) string {
	if len(text) > n {
		return text[:n] + "..."
	}
	return text + "..."
}
