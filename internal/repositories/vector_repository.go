package repositories

import (
	"context"
	"errors"
)

// VectorRepository abstracts a vector database partitioned per document.
// Each file_id maps to its own partition (a ChromaDB collection or a
// Pinecone namespace), so deleting a document is a partition drop.
type VectorRepository interface {
	// EnsurePartition creates the partition for a document if absent (idempotent)
	EnsurePartition(ctx context.Context, fileID string) error

	// PartitionExists reports whether any vectors are stored for a document
	PartitionExists(ctx context.Context, fileID string) (bool, error)

	// StoreChunks upserts embedded chunks into the document's partition
	StoreChunks(ctx context.Context, fileID string, chunks []*EmbeddedChunk) error

	// SearchChunks returns the topK nearest chunks, best first.
	// Returns ErrPartitionNotFound when the document was never indexed.
	SearchChunks(ctx context.Context, fileID string, queryEmbedding []float32, topK int) ([]*SearchResult, error)

	// DeletePartition removes every vector for a document. Deleting an
	// absent partition is not an error; the bool reports whether anything
	// existed.
	DeletePartition(ctx context.Context, fileID string) (bool, error)

	// Ping checks backend health
	Ping(ctx context.Context) error
	Close() error
}

// EmbeddedChunk is a chunk ready to be written to the vector store
type EmbeddedChunk struct {
	ID         string    `json:"id"`
	FileID     string    `json:"file_id"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
	ChunkIndex int       `json:"chunk_index"`
}

// SearchResult is a single similarity-search hit
type SearchResult struct {
	ChunkID    string                 `json:"chunk_id"`
	FileID     string                 `json:"file_id"`
	Text       string                 `json:"text"`
	Score      float64                `json:"score"` // Higher is better; surfaced unchanged to callers
	ChunkIndex int                    `json:"chunk_index"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// ErrPartitionNotFound signals that no vectors exist for the requested file_id
var ErrPartitionNotFound = errors.New("no vector partition found for document")

// VectorRepositoryError wraps backend failures with the operation that caused them
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
