package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *HuggingFaceEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	return NewHuggingFaceEmbedder("hf-token", "sentence-transformers/all-MiniLM-L6-v2", logger).
		WithBaseURL(server.URL)
}

func TestEmbedTexts(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq hfEmbedRequest
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([][]float32{{0.1, 0.2}, {0.3, 0.4}})
	})

	embeddings, err := embedder.EmbedTexts(context.Background(), []string{"first chunk", "second chunk"})
	require.NoError(t, err)

	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
	assert.Equal(t, []float32{0.3, 0.4}, embeddings[1])

	assert.Equal(t, "/sentence-transformers/all-MiniLM-L6-v2", gotPath)
	assert.Equal(t, "Bearer hf-token", gotAuth)
	assert.Equal(t, []string{"first chunk", "second chunk"}, gotReq.Inputs)
	assert.Equal(t, true, gotReq.Options["wait_for_model"])
}

func TestEmbedTextsEmptyInput(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for empty input")
	})

	embeddings, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.1}})
	})

	_, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count mismatch")
}

func TestEmbedTextsAPIError(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model loading"}`, http.StatusServiceUnavailable)
	})

	_, err := embedder.EmbedTexts(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestEmbedQuery(t *testing.T) {
	embedder := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]float32{{0.7, 0.8, 0.9}})
	})

	vector, err := embedder.EmbedQuery(context.Background(), "what is entropy?")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.7, 0.8, 0.9}, vector)
}
