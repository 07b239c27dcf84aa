package repositories

import (
	"context"
	"fmt"

	"studybuddy/internal/db"
)

// PineconeVectorRepository implements VectorRepository on a single Pinecone
// serverless index. Every document gets its own namespace keyed by file_id.
type PineconeVectorRepository struct {
	client *db.PineconeClient
}

// NewPineconeVectorRepository creates a Pinecone-backed vector repository
func NewPineconeVectorRepository(client *db.PineconeClient) VectorRepository {
	return &PineconeVectorRepository{
		client: client,
	}
}

// EnsurePartition makes sure the index exists. Namespaces themselves are
// created implicitly on first upsert.
func (r *PineconeVectorRepository) EnsurePartition(ctx context.Context, fileID string) error {
	if err := r.client.EnsureIndex(ctx); err != nil {
		return NewVectorRepositoryError("ensure_partition", err, "")
	}
	return nil
}

// PartitionExists reports whether the document's namespace holds any vectors
func (r *PineconeVectorRepository) PartitionExists(ctx context.Context, fileID string) (bool, error) {
	count, err := r.client.NamespaceCount(ctx, fileID)
	if err != nil {
		return false, NewVectorRepositoryError("partition_exists", err, "")
	}
	return count > 0, nil
}

// StoreChunks upserts embedded chunks into the document's namespace
func (r *PineconeVectorRepository) StoreChunks(ctx context.Context, fileID string, chunks []*EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors := make([]db.PineconeVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = db.PineconeVector{
			ID:     chunk.ID,
			Values: chunk.Embedding,
			Metadata: map[string]interface{}{
				"source": chunk.FileID,
				"chunk":  chunk.ChunkIndex,
				"text":   chunk.Text,
			},
		}
	}

	if err := r.client.Upsert(ctx, fileID, vectors); err != nil {
		return NewVectorRepositoryError("store_chunks", err, fmt.Sprintf("failed to store %d chunks", len(chunks)))
	}
	return nil
}

// SearchChunks searches the document's namespace for similar chunks
func (r *PineconeVectorRepository) SearchChunks(ctx context.Context, fileID string, queryEmbedding []float32, topK int) ([]*SearchResult, error) {
	exists, err := r.PartitionExists(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPartitionNotFound
	}

	resp, err := r.client.Query(ctx, fileID, queryEmbedding, topK)
	if err != nil {
		return nil, NewVectorRepositoryError("search_chunks", err, "query failed")
	}

	searchResults := make([]*SearchResult, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		text := ""
		if t, ok := match.Metadata["text"].(string); ok {
			text = t
		}
		chunkIndex := 0
		if ci, ok := match.Metadata["chunk"].(float64); ok {
			chunkIndex = int(ci)
		}

		searchResults = append(searchResults, &SearchResult{
			ChunkID:    match.ID,
			FileID:     fileID,
			Text:       text,
			Score:      float64(match.Score),
			ChunkIndex: chunkIndex,
			Metadata:   match.Metadata,
		})
	}

	return searchResults, nil
}

// DeletePartition removes every vector in the document's namespace
func (r *PineconeVectorRepository) DeletePartition(ctx context.Context, fileID string) (bool, error) {
	count, err := r.client.NamespaceCount(ctx, fileID)
	if err != nil {
		return false, NewVectorRepositoryError("delete_partition", err, "")
	}
	if count == 0 {
		return false, nil
	}

	if err := r.client.DeleteNamespace(ctx, fileID); err != nil {
		return false, NewVectorRepositoryError("delete_partition", err, "failed to delete namespace: "+fileID)
	}
	return true, nil
}

// Ping verifies the index is reachable
func (r *PineconeVectorRepository) Ping(ctx context.Context) error {
	if err := r.client.EnsureIndex(ctx); err != nil {
		return NewVectorRepositoryError("ping", err, "Pinecone index unavailable")
	}
	return nil
}

// Close closes the Pinecone client
func (r *PineconeVectorRepository) Close() error {
	r.client.Close()
	return nil
}
