package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"studybuddy/internal/models"
)

// PDFService handles upload storage and text extraction. Uploaded files
// are temporary: callers delete them once the text is indexed.
type PDFService struct {
	uploadDir   string
	maxFileSize int64
	allowedExts []string
	logger      *log.Logger
}

// NewPDFService creates a PDF ingestion service
func NewPDFService(uploadDir string, maxFileSize int64, allowedExts []string, logger *log.Logger) *PDFService {
	return &PDFService{
		uploadDir:   uploadDir,
		maxFileSize: maxFileSize,
		allowedExts: allowedExts,
		logger:      logger,
	}
}

// ValidateUpload checks the file extension and size before any processing
func (s *PDFService) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range s.allowedExts {
		if ext == strings.ToLower(e) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("only %s files are allowed", strings.Join(s.allowedExts, ", "))
	}
	if size > s.maxFileSize {
		return fmt.Errorf("file size exceeds maximum limit of %d MB", s.maxFileSize/(1024*1024))
	}
	return nil
}

// SaveUpload writes the uploaded bytes to the upload directory and returns
// the full path. The filename is reduced to its base to block path traversal.
func (s *PDFService) SaveUpload(content []byte, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	safeName := filepath.Base(filename)
	path := filepath.Join(s.uploadDir, safeName)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

// ExtractText reads a PDF and returns the full text (with page markers),
// per-page texts and the page count.
func (s *PDFService) ExtractText(path string) (*models.PDFExtract, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error extracting PDF text: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]models.PageText, 0, numPages)

	var fullText strings.Builder
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, models.PageText{PageNumber: i, Text: ""})
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			s.logger.Printf("Warning: failed to extract text from page %d of %s: %v", i, path, err)
			pageText = ""
		}

		pages = append(pages, models.PageText{
			PageNumber: i,
			Text:       pageText,
		})
		fullText.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n%s", i, pageText))
	}

	return &models.PDFExtract{
		Filename: filepath.Base(path),
		NumPages: numPages,
		FullText: fullText.String(),
		Pages:    pages,
		FilePath: path,
	}, nil
}

// DeleteFile removes an uploaded file. Failure is logged, never fatal:
// by the time this runs the text already lives in the vector store.
func (s *PDFService) DeleteFile(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true
	}
	if err := os.Remove(path); err != nil {
		s.logger.Printf("Warning: could not delete file %s: %v", path, err)
		return false
	}
	return true
}

// FileIDFromFilename derives the document identifier from the original
// filename: extension stripped, spaces replaced with underscores.
func FileIDFromFilename(filename string) string {
	base := filepath.Base(filename)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(id, " ", "_")
}
