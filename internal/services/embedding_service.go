package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Embedder turns text into dense vectors for similarity search
type Embedder interface {
	// EmbedTexts embeds a batch of texts, preserving order
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query string
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

const hfInferenceBaseURL = "https://api-inference.huggingface.co/pipeline/feature-extraction"

// HuggingFaceEmbedder calls the HuggingFace Inference API
// feature-extraction pipeline (all-MiniLM-L6-v2 by default, 384 dims).
type HuggingFaceEmbedder struct {
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewHuggingFaceEmbedder creates an embedding client for the given model
func NewHuggingFaceEmbedder(token, model string, logger *log.Logger) *HuggingFaceEmbedder {
	return &HuggingFaceEmbedder{
		baseURL: hfInferenceBaseURL,
		token:   token,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// WithBaseURL overrides the API endpoint (used in tests)
func (e *HuggingFaceEmbedder) WithBaseURL(url string) *HuggingFaceEmbedder {
	e.baseURL = url
	return e
}

type hfEmbedRequest struct {
	Inputs  []string               `json:"inputs"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// EmbedTexts embeds a batch of texts in one API call
func (e *HuggingFaceEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := hfEmbedRequest{
		Inputs: texts,
		Options: map[string]interface{}{
			"wait_for_model": true,
		},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", e.baseURL, e.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var embeddings [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(embeddings))
	}

	e.logger.Printf("Embedded %d texts in %.2fms (model: %s)",
		len(texts), time.Since(start).Seconds()*1000, e.model)

	return embeddings, nil
}

// EmbedQuery embeds a single query string
func (e *HuggingFaceEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding response was empty")
	}
	return embeddings[0], nil
}
