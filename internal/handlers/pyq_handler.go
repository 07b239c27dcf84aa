package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"studybuddy/internal/models"
	"studybuddy/internal/services"
)

const (
	defaultMockQuestions = 5
	maxMockQuestions     = 20
	questionsPreviewLen  = 3
)

// PYQHandler handles previous-year question paper endpoints
type PYQHandler struct {
	pdfService *services.PDFService
	pyqService *services.PYQService
	logger     *log.Logger
}

// NewPYQHandler creates a new PYQ handler
func NewPYQHandler(pdfService *services.PDFService, pyqService *services.PYQService, logger *log.Logger) *PYQHandler {
	return &PYQHandler{
		pdfService: pdfService,
		pyqService: pyqService,
		logger:     logger,
	}
}

// Upload extracts questions from an uploaded question paper
// @Summary Upload a question paper
// @Description Upload a PYQ PDF and extract its individual questions
// @Tags pyq
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question paper PDF"
// @Success 200 {object} models.PYQUploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/pyq/upload [post]
func (h *PYQHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("PYQ upload request from %s", r.RemoteAddr)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
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
		sendError(w, h.logger, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	path, err := h.pdfService.SaveUpload(content, header.Filename)
	if err != nil {
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to save file: %v", err))
		return
	}
	defer h.pdfService.DeleteFile(path)

	extract, err := h.pdfService.ExtractText(path)
	if err != nil {
		h.logger.Printf("PYQ extraction failed for %s: %v", header.Filename, err)
		sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to extract text: %v", err))
		return
	}

	fileID := services.FileIDFromFilename(header.Filename)
	questions := h.pyqService.ExtractQuestions(r.Context(), extract.FullText)
	h.pyqService.StorePaper(fileID, questions)

	h.logger.Printf("PYQ %s: extracted %d questions", fileID, len(questions))

	preview := questions
	if len(preview) > questionsPreviewLen {
		preview = preview[:questionsPreviewLen]
	}

	sendJSON(w, h.logger, http.StatusOK, models.PYQUploadResponse{
		Success:          true,
		Message:          fmt.Sprintf("Extracted %d questions from the paper", len(questions)),
		Filename:         header.Filename,
		FileID:           fileID,
		NumPages:         extract.NumPages,
		QuestionsFound:   len(questions),
		QuestionsPreview: preview,
	})
}

// Analyze maps a stored paper's questions onto syllabus topics
// @Summary Analyze a question paper
// @Description Map extracted questions to syllabus topics and produce frequency stats and study recommendations
// @Tags pyq
// @Accept json
// @Produce json
// @Param request body models.AnalyzePYQRequest true "Analysis request"
// @Success 200 {object} models.AnalyzePYQResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/pyq/analyze [post]
func (h *PYQHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzePYQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SyllabusFileID == "" || req.PYQFileID == "" {
		sendError(w, h.logger, http.StatusBadRequest, "syllabus_file_id and pyq_file_id are required")
		return
	}

	resp, err := h.pyqService.Analyze(r.Context(), req.SyllabusFileID, req.PYQFileID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPYQNotFound):
			sendError(w, h.logger, http.StatusNotFound,
				fmt.Sprintf("Question paper '%s' not found. Please upload it first.", req.PYQFileID))
		case errors.Is(err, services.ErrDocumentNotIndexed):
			sendError(w, h.logger, http.StatusNotFound,
				fmt.Sprintf("Syllabus '%s' not found. Please upload the PDF first.", req.SyllabusFileID))
		case errors.Is(err, services.ErrNoQuestions):
			sendError(w, h.logger, http.StatusBadRequest, "No questions were extracted from this paper")
		default:
			h.logger.Printf("PYQ analysis failed: %v", err)
			sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Analysis failed: %v", err))
		}
		return
	}

	sendJSON(w, h.logger, http.StatusOK, resp)
}

// GenerateMock creates practice questions for a topic
// @Summary Generate mock questions
// @Description Generate exam-style practice questions about a topic, grounded in syllabus content
// @Tags pyq
// @Accept json
// @Produce json
// @Param request body models.GenerateMockRequest true "Mock generation request"
// @Success 200 {object} models.GenerateMockResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/pyq/generate-mock [post]
func (h *PYQHandler) GenerateMock(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateMockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SyllabusFileID == "" {
		sendError(w, h.logger, http.StatusBadRequest, "syllabus_file_id is required")
		return
	}
	if req.Topic == "" {
		sendError(w, h.logger, http.StatusBadRequest, "Topic is required")
		return
	}
	if req.NumQuestions == 0 {
		req.NumQuestions = defaultMockQuestions
	}
	if req.NumQuestions < 1 || req.NumQuestions > maxMockQuestions {
		sendError(w, h.logger, http.StatusBadRequest,
			fmt.Sprintf("num_questions must be between 1 and %d", maxMockQuestions))
		return
	}

	questions, err := h.pyqService.GenerateMockQuestions(r.Context(), req.SyllabusFileID, req.Topic, req.NumQuestions)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotIndexed):
			sendError(w, h.logger, http.StatusNotFound,
				fmt.Sprintf("Syllabus '%s' not found. Please upload the PDF first.", req.SyllabusFileID))
		case errors.Is(err, services.ErrUnknownTopic):
			sendError(w, h.logger, http.StatusNotFound,
				fmt.Sprintf("No syllabus content found for topic '%s'", req.Topic))
		default:
			h.logger.Printf("Mock generation failed: %v", err)
			sendError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		}
		return
	}

	sendJSON(w, h.logger, http.StatusOK, models.GenerateMockResponse{
		Success:            true,
		Topic:              req.Topic,
		QuestionsGenerated: len(questions),
		Questions:          questions,
		UsageNote:          "These questions are AI-generated from your syllabus content. Use them for practice, not as a guarantee of exam content.",
	})
}
