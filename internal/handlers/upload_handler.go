package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"studybuddy/internal/models"
	"studybuddy/internal/services"

	"github.com/gorilla/mux"
)

const textPreviewLen = 500

// UploadHandler handles PDF upload, indexing and deletion
type UploadHandler struct {
	pdfService    *services.PDFService
	vectorService *services.VectorService
	logger        *log.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(pdfService *services.PDFService, vectorService *services.VectorService, logger *log.Logger) *UploadHandler {
	return &UploadHandler{
		pdfService:    pdfService,
		vectorService: vectorService,
		logger:        logger,
	}
}

// UploadPDF extracts text from an uploaded PDF and indexes it for retrieval
// @Summary Upload a PDF
// @Description Upload a PDF, extract its text, chunk it and index the chunks for similarity search
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/upload/pdf [post]
func (h *UploadHandler) UploadPDF(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Upload request from %s", r.RemoteAddr)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.logger.Printf("Failed to parse form: %v", err)
		sendError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.logger.Printf("No file uploaded: %v", err)
		sendError(w, h.logger, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if err := h.pdfService.ValidateUpload(header.Filename, header.Size); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Printf("Failed to read upload: %v", err)
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	path, err := h.pdfService.SaveUpload(content, header.Filename)
	if err != nil {
		h.logger.Printf("Failed to save upload: %v", err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}
	// The file only exists for extraction; chunks live in the vector store
	defer h.pdfService.DeleteFile(path)

	extract, err := h.pdfService.ExtractText(path)
	if err != nil {
		h.logger.Printf("Extraction failed for %s: %v", header.Filename, err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to extract text: %v", err))
		return
	}

	fileID := services.FileIDFromFilename(header.Filename)

	numChunks, err := h.vectorService.IndexDocument(r.Context(), fileID, extract.FullText)
	if err != nil {
		h.logger.Printf("Indexing failed for %s: %v", fileID, err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to index document: %v", err))
		return
	}

	preview := extract.FullText
	if len(preview) > textPreviewLen {
		preview = preview[:textPreviewLen]
	}
	preview += "..."

	sendJSON(w, h.logger, http.StatusOK, models.UploadResponse{
		Success:          true,
		Message:          "PDF uploaded and processed successfully",
		Filename:         header.Filename,
		NumPages:         extract.NumPages,
		TextPreview:      preview,
		FileID:           fileID,
		NumChunks:        numChunks,
		VectorStoreReady: true,
	})
}

// DeleteDocument removes an indexed document's chunks
// @Summary Delete a document
// @Description Remove all indexed chunks for a previously uploaded document
// @Tags upload
// @Produce json
// @Param file_id path string true "Document file ID"
// @Success 200 {object} models.DeleteDocumentResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/upload/delete/{file_id} [delete]
func (h *UploadHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["file_id"]

	existed, err := h.vectorService.Delete(r.Context(), fileID)
	if err != nil {
		h.logger.Printf("Delete failed for %s: %v", fileID, err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete document: %v", err))
		return
	}

	// Deleting an unknown document is not an error; the flag says so.
	if !existed {
		sendJSON(w, h.logger, http.StatusOK, models.DeleteDocumentResponse{
			Success: false,
			Message: fmt.Sprintf("Document '%s' not found", fileID),
		})
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.DeleteDocumentResponse{
		Success: true,
		Message: fmt.Sprintf("Document '%s' deleted successfully", fileID),
	})
}
