package services

import (
	"strings"
)

// Chunker splits document text into overlapping fixed-size windows for
// embedding. Splits prefer natural boundaries (paragraph, line, sentence,
// word) before falling back to a hard character cut. Splitting is
// deterministic: the same input always yields the same chunks.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Separators tried in order when looking for a natural cut point
var chunkSeparators = []string{"\n\n", "\n", ". ", " "}

// NewChunker creates a chunker. Overlap must be smaller than the chunk size.
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidConfig
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// Split produces an ordered sequence of overlapping substrings covering the
// full text. Every chunk is at most chunkSize characters and consecutive
// chunks overlap by exactly the configured overlap. No chunk is empty.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		end = c.cutPoint(text, start, end)
		chunks = append(chunks, text[start:end])

		// The next window starts overlap characters before this cut, so
		// consecutive chunks share exactly that many characters.
		start = end - c.overlap
	}

	return chunks
}

// cutPoint finds the best position to end a chunk within [start, limit).
// It walks the separator preference list and takes the latest occurrence
// in the second half of the window, falling back to a hard cut at limit.
func (c *Chunker) cutPoint(text string, start, limit int) int {
	// The cut must leave room for forward progress after overlap rewind
	floor := start + c.overlap + 1
	if half := start + c.chunkSize/2; half > floor {
		floor = half
	}
	if floor >= limit {
		return limit
	}

	window := text[floor:limit]
	for _, sep := range chunkSeparators {
		if idx := strings.LastIndex(window, sep); idx >= 0 {
			// Keep the separator with the preceding chunk
			return floor + idx + len(sep)
		}
	}
	return limit
}

// ChunkSize returns the configured window size
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap between consecutive chunks
func (c *Chunker) Overlap() int { return c.overlap }
