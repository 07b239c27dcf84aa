package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"studybuddy/internal/models"
	"studybuddy/internal/repositories"
)

// VectorService is the index adapter: it chunks document text, embeds the
// chunks and stores them in a per-document vector partition, and answers
// similarity searches against those partitions.
type VectorService struct {
	chunker  *Chunker
	embedder Embedder
	repo     repositories.VectorRepository
	logger   *log.Logger
}

// NewVectorService creates the vector index adapter
func NewVectorService(chunker *Chunker, embedder Embedder, repo repositories.VectorRepository, logger *log.Logger) *VectorService {
	return &VectorService{
		chunker:  chunker,
		embedder: embedder,
		repo:     repo,
		logger:   logger,
	}
}

// IndexDocument chunks, embeds and stores a document's text under its
// file_id partition. Returns the number of chunks indexed.
func (s *VectorService) IndexDocument(ctx context.Context, fileID, text string) (int, error) {
	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s produced no chunks", fileID)
	}
	s.logger.Printf("Indexing %s: %d chunks (size=%d, overlap=%d)",
		fileID, len(chunks), s.chunker.ChunkSize(), s.chunker.Overlap())

	embeddings, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("error creating vector store: %w", err)
	}

	if err := s.repo.EnsurePartition(ctx, fileID); err != nil {
		return 0, fmt.Errorf("error creating vector store: %w", err)
	}

	embedded := make([]*repositories.EmbeddedChunk, len(chunks))
	for i, chunk := range chunks {
		embedded[i] = &repositories.EmbeddedChunk{
			ID:         fmt.Sprintf("%s_chunk_%d", fileID, i),
			FileID:     fileID,
			Text:       chunk,
			Embedding:  embeddings[i],
			ChunkIndex: i,
		}
	}

	if err := s.repo.StoreChunks(ctx, fileID, embedded); err != nil {
		return 0, fmt.Errorf("error creating vector store: %w", err)
	}

	return len(chunks), nil
}

// Search embeds the query and returns the k nearest chunks from the
// document's partition, best first. Returns ErrDocumentNotIndexed when
// nothing was ever indexed under fileID.
func (s *VectorService) Search(ctx context.Context, fileID, query string, k int) ([]models.RetrievedChunk, error) {
	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying vector store: %w", err)
	}

	results, err := s.repo.SearchChunks(ctx, fileID, queryEmbedding, k)
	if err != nil {
		if errors.Is(err, repositories.ErrPartitionNotFound) {
			return nil, ErrDocumentNotIndexed
		}
		return nil, fmt.Errorf("error querying vector store: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, models.RetrievedChunk{
			Content:    r.Text,
			Source:     r.FileID,
			ChunkIndex: r.ChunkIndex,
			Similarity: r.Score,
		})
	}
	return chunks, nil
}

// Delete removes every vector stored for a document. Deleting an absent
// document is not an error; the bool reports whether anything existed.
func (s *VectorService) Delete(ctx context.Context, fileID string) (bool, error) {
	existed, err := s.repo.DeletePartition(ctx, fileID)
	if err != nil {
		return false, fmt.Errorf("error deleting vectors: %w", err)
	}
	if !existed {
		s.logger.Printf("Delete requested for %s but no vectors were stored", fileID)
	}
	return existed, nil
}

// Ping checks the vector backend's health
func (s *VectorService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
