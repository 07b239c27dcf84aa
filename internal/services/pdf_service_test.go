package services

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestPDFService(t *testing.T) *PDFService {
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	return NewPDFService(t.TempDir(), 10*1024*1024, []string{".pdf"}, logger)
}

func TestValidateUpload(t *testing.T) {
	service := setupTestPDFService(t)

	tests := []struct {
		name        string
		filename    string
		size        int64
		expectError bool
	}{
		{name: "valid pdf", filename: "notes.pdf", size: 1024},
		{name: "uppercase extension", filename: "NOTES.PDF", size: 1024},
		{name: "wrong extension", filename: "notes.docx", size: 1024, expectError: true},
		{name: "no extension", filename: "notes", size: 1024, expectError: true},
		{name: "too large", filename: "notes.pdf", size: 11 * 1024 * 1024, expectError: true},
		{name: "at size limit", filename: "notes.pdf", size: 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateUpload(tt.filename, tt.size)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveUpload(t *testing.T) {
	service := setupTestPDFService(t)

	path, err := service.SaveUpload([]byte("%PDF-1.4 fake"), "lecture notes.pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestSaveUploadBlocksPathTraversal(t *testing.T) {
	service := setupTestPDFService(t)

	path, err := service.SaveUpload([]byte("x"), "../../etc/evil.pdf")
	require.NoError(t, err)
	assert.Equal(t, "evil.pdf", filepath.Base(path))
	assert.Equal(t, service.uploadDir, filepath.Dir(path))
}

func TestDeleteFile(t *testing.T) {
	service := setupTestPDFService(t)

	path, err := service.SaveUpload([]byte("x"), "temp.pdf")
	require.NoError(t, err)

	assert.True(t, service.DeleteFile(path))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	// Deleting a file that is already gone is fine
	assert.True(t, service.DeleteFile(path))
}

func TestFileIDFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"notes.pdf", "notes"},
		{"machine learning syllabus.pdf", "machine_learning_syllabus"},
		{"exam 2024 paper.PDF", "exam_2024_paper"},
		{"no_extension", "no_extension"},
		{"/tmp/uploads/deep learning.pdf", "deep_learning"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, FileIDFromFilename(tt.filename))
		})
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	service := setupTestPDFService(t)

	_, err := service.ExtractText(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error extracting PDF text")
}
