package repositories

import (
	"context"
	"errors"
	"fmt"

	"studybuddy/internal/db"
)

// ChromaVectorRepository implements VectorRepository on ChromaDB.
// Every document gets its own collection named doc_<file_id>.
type ChromaVectorRepository struct {
	client *db.ChromaClient
}

// NewChromaVectorRepository creates a ChromaDB-backed vector repository
func NewChromaVectorRepository(client *db.ChromaClient) VectorRepository {
	return &ChromaVectorRepository{
		client: client,
	}
}

func chromaCollectionName(fileID string) string {
	return "doc_" + fileID
}

// EnsurePartition creates the document's collection if it does not exist
func (r *ChromaVectorRepository) EnsurePartition(ctx context.Context, fileID string) error {
	name := chromaCollectionName(fileID)

	_, err := r.client.GetCollection(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrChromaNotFound) {
		return NewVectorRepositoryError("ensure_partition", err, "")
	}

	if _, err := r.client.CreateCollection(ctx, name, nil); err != nil {
		return NewVectorRepositoryError("ensure_partition", err, "failed to create collection: "+name)
	}
	return nil
}

// PartitionExists checks whether the document's collection exists
func (r *ChromaVectorRepository) PartitionExists(ctx context.Context, fileID string) (bool, error) {
	_, err := r.client.GetCollection(ctx, chromaCollectionName(fileID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrChromaNotFound) {
		return false, nil
	}
	return false, NewVectorRepositoryError("partition_exists", err, "")
}

// StoreChunks upserts embedded chunks into the document's collection
func (r *ChromaVectorRepository) StoreChunks(ctx context.Context, fileID string, chunks []*EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		documents[i] = chunk.Text
		embeddings[i] = chunk.Embedding
		metadatas[i] = map[string]interface{}{
			"source": chunk.FileID,
			"chunk":  chunk.ChunkIndex,
		}
	}

	err := r.client.AddRecords(ctx, chromaCollectionName(fileID), ids, documents, embeddings, metadatas)
	if err != nil {
		return NewVectorRepositoryError("store_chunks", err, fmt.Sprintf("failed to store %d chunks", len(chunks)))
	}
	return nil
}

// SearchChunks searches the document's collection for similar chunks
func (r *ChromaVectorRepository) SearchChunks(ctx context.Context, fileID string, queryEmbedding []float32, topK int) ([]*SearchResult, error) {
	results, err := r.client.Query(ctx, chromaCollectionName(fileID), queryEmbedding, topK)
	if err != nil {
		if errors.Is(err, db.ErrChromaNotFound) {
			return nil, ErrPartitionNotFound
		}
		return nil, NewVectorRepositoryError("search_chunks", err, "query failed")
	}

	searchResults := make([]*SearchResult, 0)
	if len(results.IDs) == 0 {
		return searchResults, nil
	}

	for i := range results.IDs[0] {
		metadata := map[string]interface{}{}
		if len(results.Metadatas) > 0 && i < len(results.Metadatas[0]) {
			metadata = results.Metadatas[0][i]
		}

		var text string
		if len(results.Documents) > 0 && i < len(results.Documents[0]) {
			text = results.Documents[0][i]
		}

		var distance float32
		if len(results.Distances) > 0 && i < len(results.Distances[0]) {
			distance = results.Distances[0][i]
		}

		chunkIndex := 0
		if ci, ok := metadata["chunk"].(float64); ok {
			chunkIndex = int(ci)
		}

		searchResults = append(searchResults, &SearchResult{
			ChunkID:    results.IDs[0][i],
			FileID:     fileID,
			Text:       text,
			Score:      float64(1.0 - distance), // cosine distance -> similarity
			ChunkIndex: chunkIndex,
			Metadata:   metadata,
		})
	}

	return searchResults, nil
}

// DeletePartition drops the document's collection
func (r *ChromaVectorRepository) DeletePartition(ctx context.Context, fileID string) (bool, error) {
	name := chromaCollectionName(fileID)

	_, err := r.client.GetCollection(ctx, name)
	if errors.Is(err, db.ErrChromaNotFound) {
		return false, nil
	}
	if err != nil {
		return false, NewVectorRepositoryError("delete_partition", err, "")
	}

	if err := r.client.DeleteCollection(ctx, name); err != nil {
		return false, NewVectorRepositoryError("delete_partition", err, "failed to delete collection: "+name)
	}
	return true, nil
}

// Ping checks if ChromaDB is alive
func (r *ChromaVectorRepository) Ping(ctx context.Context) error {
	if err := r.client.Heartbeat(ctx); err != nil {
		return NewVectorRepositoryError("ping", err, "ChromaDB heartbeat failed")
	}
	return nil
}

// Close closes the ChromaDB client
func (r *ChromaVectorRepository) Close() error {
	r.client.Close()
	return nil
}
