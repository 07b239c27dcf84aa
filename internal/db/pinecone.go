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

// PineconeClient wraps HTTP calls to the Pinecone control and data planes.
// Each document gets its own namespace inside a single serverless index.
type PineconeClient struct {
	apiKey     string
	indexName  string
	cloud      string
	region     string
	dimension  int
	indexHost  string // resolved lazily from the control plane
	httpClient *http.Client
}

// PineconeConfig holds configuration for a Pinecone connection
type PineconeConfig struct {
	APIKey    string
	IndexName string
	Cloud     string // default: "aws"
	Region    string // default: "us-east-1"
	Dimension int    // default: 384 (all-MiniLM-L6-v2)
	Timeout   time.Duration
}

// PineconeVector is a single record in the upsert payload
type PineconeVector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PineconeMatch is a single query result
type PineconeMatch struct {
	ID       string                 `json:"id"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PineconeQueryResponse is the data-plane query response
type PineconeQueryResponse struct {
	Matches   []PineconeMatch `json:"matches"`
	Namespace string          `json:"namespace"`
}

type pineconeIndexDescription struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Status struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type pineconeIndexStats struct {
	Namespaces map[string]struct {
		VectorCount int `json:"vectorCount"`
	} `json:"namespaces"`
	TotalVectorCount int `json:"totalVectorCount"`
}

const pineconeControlPlane = "https://api.pinecone.io"

// NewPineconeClient creates a Pinecone client for a single serverless index
func NewPineconeClient(config PineconeConfig) *PineconeClient {
	if config.Cloud == "" {
		config.Cloud = "aws"
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}
	if config.Dimension == 0 {
		config.Dimension = 384
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &PineconeClient{
		apiKey:    config.APIKey,
		indexName: config.IndexName,
		cloud:     config.Cloud,
		region:    config.Region,
		dimension: config.Dimension,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (c *PineconeClient) doJSON(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
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
	req.Header.Set("Api-Key", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrPineconeNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ErrPineconeNotFound signals a missing index (HTTP 404 from Pinecone)
var ErrPineconeNotFound = fmt.Errorf("pinecone: not found")

// EnsureIndex creates the serverless index if it does not exist yet and
// resolves the data-plane host. Safe to call repeatedly.
func (c *PineconeClient) EnsureIndex(ctx context.Context) error {
	desc, err := c.describeIndex(ctx)
	if err == nil {
		c.indexHost = desc.Host
		return nil
	}
	if err != ErrPineconeNotFound {
		return err
	}

	payload := map[string]interface{}{
		"name":      c.indexName,
		"dimension": c.dimension,
		"metric":    "cosine",
		"spec": map[string]interface{}{
			"serverless": map[string]interface{}{
				"cloud":  c.cloud,
				"region": c.region,
			},
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, pineconeControlPlane+"/indexes", payload, nil); err != nil {
		return fmt.Errorf("failed to create index %s: %w", c.indexName, err)
	}

	// Creation is async; poll until the index reports ready
	for i := 0; i < 30; i++ {
		desc, err := c.describeIndex(ctx)
		if err == nil && desc.Status.Ready {
			c.indexHost = desc.Host
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("index %s did not become ready", c.indexName)
}

func (c *PineconeClient) describeIndex(ctx context.Context) (*pineconeIndexDescription, error) {
	var desc pineconeIndexDescription
	url := fmt.Sprintf("%s/indexes/%s", pineconeControlPlane, c.indexName)
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (c *PineconeClient) host(ctx context.Context) (string, error) {
	if c.indexHost != "" {
		return c.indexHost, nil
	}
	if err := c.EnsureIndex(ctx); err != nil {
		return "", err
	}
	return c.indexHost, nil
}

// Upsert writes vectors into a namespace
func (c *PineconeClient) Upsert(ctx context.Context, namespace string, vectors []PineconeVector) error {
	host, err := c.host(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"vectors":   vectors,
		"namespace": namespace,
	}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("https://%s/vectors/upsert", host), payload, nil)
}

// Query performs a nearest-neighbor search within a namespace
func (c *PineconeClient) Query(ctx context.Context, namespace string, vector []float32, topK int) (*PineconeQueryResponse, error) {
	host, err := c.host(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"vector":          vector,
		"topK":            topK,
		"namespace":       namespace,
		"includeMetadata": true,
	}

	var queryResp PineconeQueryResponse
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("https://%s/query", host), payload, &queryResp); err != nil {
		return nil, err
	}
	return &queryResp, nil
}

// NamespaceCount returns the number of vectors stored in a namespace
// (0 when the namespace does not exist).
func (c *PineconeClient) NamespaceCount(ctx context.Context, namespace string) (int, error) {
	host, err := c.host(ctx)
	if err != nil {
		return 0, err
	}

	var stats pineconeIndexStats
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("https://%s/describe_index_stats", host), map[string]interface{}{}, &stats); err != nil {
		return 0, err
	}
	ns, ok := stats.Namespaces[namespace]
	if !ok {
		return 0, nil
	}
	return ns.VectorCount, nil
}

// DeleteNamespace removes every vector in a namespace
func (c *PineconeClient) DeleteNamespace(ctx context.Context, namespace string) error {
	host, err := c.host(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"deleteAll": true,
		"namespace": namespace,
	}
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("https://%s/vectors/delete", host), payload, nil)
}

// Close closes idle HTTP connections
func (c *PineconeClient) Close() {
	c.httpClient.CloseIdleConnections()
}
