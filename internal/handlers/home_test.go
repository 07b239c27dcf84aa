package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"studybuddy/internal/config"
	"studybuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBreaker struct{ state string }

func (s stubBreaker) BreakerState() string { return s.state }

func TestHealth(t *testing.T) {
	cfg := &config.Config{AppName: "StudyBuddy.ai", Version: "1.0.0", Debug: true, VectorBackend: "chroma"}
	handler := NewHomeHandler(cfg, stubBreaker{state: "closed"}, testLogger())

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "StudyBuddy.ai", resp.App)
	assert.Equal(t, "chroma", resp.VectorBackend)
	assert.Equal(t, "closed", resp.LLMBreaker)
	assert.True(t, resp.DebugMode)
}

func TestHealthWithoutLLM(t *testing.T) {
	cfg := &config.Config{AppName: "StudyBuddy.ai", Version: "1.0.0"}
	handler := NewHomeHandler(cfg, nil, testLogger())

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.LLMBreaker)
}

func TestRoot(t *testing.T) {
	cfg := &config.Config{AppName: "StudyBuddy.ai", Version: "1.0.0"}
	handler := NewHomeHandler(cfg, nil, testLogger())

	rec := httptest.NewRecorder()
	handler.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RootResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Welcome to StudyBuddy.ai", resp.Message)
	assert.Equal(t, "/docs", resp.Docs)
	assert.Equal(t, "running", resp.Status)
}
