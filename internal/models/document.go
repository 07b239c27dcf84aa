package models

// PageText is the extracted text of one PDF page
type PageText struct {
	PageNumber int    `json:"page_number"` // 1-based
	Text       string `json:"text"`
}

// PDFExtract is the result of extracting text from an uploaded PDF
type PDFExtract struct {
	Filename string     `json:"filename"`
	NumPages int        `json:"num_pages"`
	FullText string     `json:"full_text"` // All pages joined with page markers
	Pages    []PageText `json:"pages"`
	FilePath string     `json:"file_path"`
}

// UploadResponse is the reply to POST /api/v1/upload/pdf
type UploadResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Filename         string `json:"filename"`
	NumPages         int    `json:"num_pages"`
	TextPreview      string `json:"text_preview"` // First 500 chars
	FileID           string `json:"file_id"`
	NumChunks        int    `json:"num_chunks"`
	VectorStoreReady bool   `json:"vector_store_ready"`
}

// DeleteDocumentResponse is the reply to DELETE /api/v1/upload/delete/{file_id}
type DeleteDocumentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RetrievedChunk is a chunk returned by a similarity search, in the shape
// the RAG orchestrator and PYQ analyzer consume.
type RetrievedChunk struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`      // file_id the chunk came from
	ChunkIndex int     `json:"chunk_index"` // Position within the source document
	Similarity float64 `json:"similarity_score"`
}
