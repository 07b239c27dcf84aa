package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChromaClient wraps HTTP calls to the ChromaDB v2 API.
// This avoids compatibility issues with the official Go client library.
type ChromaClient struct {
	baseURL    string
	rootURL    string
	httpClient *http.Client
}

// ChromaConfig holds configuration for a ChromaDB connection
type ChromaConfig struct {
	Host     string
	Port     int
	Tenant   string // default: "default_tenant"
	Database string // default: "default_database"
	Timeout  time.Duration
}

// Collection represents a ChromaDB collection
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ChromaQueryResponse represents the response from a query request
type ChromaQueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float32                `json:"distances"`
}

// NewChromaClient creates a new ChromaDB client with v2 API support
func NewChromaClient(config ChromaConfig) *ChromaClient {
	if config.Tenant == "" {
		config.Tenant = "default_tenant"
	}
	if config.Database == "" {
		config.Database = "default_database"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	rootURL := fmt.Sprintf("http://%s:%d/api/v2", config.Host, config.Port)

	// ChromaDB v2 scopes collections under tenant and database
	return &ChromaClient{
		baseURL: fmt.Sprintf("%s/tenants/%s/databases/%s", rootURL, config.Tenant, config.Database),
		rootURL: rootURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// doJSON performs a request and decodes the JSON response into out (if non-nil)
func (c *ChromaClient) doJSON(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrChromaNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ErrChromaNotFound signals a missing collection (HTTP 404 from ChromaDB)
var ErrChromaNotFound = fmt.Errorf("chroma: not found")

// Heartbeat checks if ChromaDB is alive
func (c *ChromaClient) Heartbeat(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, c.rootURL+"/heartbeat", nil, nil)
}

// GetCollection retrieves a collection by name
func (c *ChromaClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var collection Collection
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, name)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCollection creates a new collection. Cosine distance unless overridden.
func (c *ChromaClient) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*Collection, error) {
	if metadata == nil {
		metadata = map[string]interface{}{
			"hnsw:space": "cosine",
		}
	}

	var collection Collection
	payload := map[string]interface{}{
		"name":     name,
		"metadata": metadata,
	}
	url := fmt.Sprintf("%s/collections", c.baseURL)
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// DeleteCollection deletes a collection and everything in it
func (c *ChromaClient) DeleteCollection(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, name)
	return c.doJSON(ctx, http.MethodDelete, url, nil, nil)
}

// CountCollection returns the number of records in a collection
func (c *ChromaClient) CountCollection(ctx context.Context, name string) (int, error) {
	collection, err := c.GetCollection(ctx, name)
	if err != nil {
		return 0, err
	}

	var count int
	url := fmt.Sprintf("%s/collections/%s/count", c.baseURL, collection.ID)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// AddRecords adds embedded documents to a collection
func (c *ChromaClient) AddRecords(ctx context.Context, collectionName string, ids []string, documents []string, embeddings [][]float32, metadatas []map[string]interface{}) error {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
	}
	if metadatas != nil {
		payload["metadatas"] = metadatas
	}

	url := fmt.Sprintf("%s/collections/%s/add", c.baseURL, collection.ID)
	return c.doJSON(ctx, http.MethodPost, url, payload, nil)
}

// Query performs a nearest-neighbor search within a collection
func (c *ChromaClient) Query(ctx context.Context, collectionName string, queryEmbedding []float32, nResults int) (*ChromaQueryResponse, error) {
	collection, err := c.GetCollection(ctx, collectionName)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{queryEmbedding},
		"n_results":        nResults,
		"include":          []string{"documents", "metadatas", "distances"},
	}

	var queryResp ChromaQueryResponse
	url := fmt.Sprintf("%s/collections/%s/query", c.baseURL, collection.ID)
	if err := c.doJSON(ctx, http.MethodPost, url, payload, &queryResp); err != nil {
		return nil, err
	}
	return &queryResp, nil
}

// Close closes idle HTTP connections
func (c *ChromaClient) Close() {
	c.httpClient.CloseIdleConnections()
}
