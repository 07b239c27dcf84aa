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

	"github.com/sony/gobreaker"
)

// LLMClient wraps a hosted chat-completion model behind a single call
type LLMClient interface {
	// Complete sends a prompt and returns the model's text verbatim
	Complete(ctx context.Context, prompt string) (string, error)
}

const groqBaseURL = "https://api.groq.com/openai/v1"

// groqChatMessage is one message in the OpenAI-compatible payload
type groqChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// groqChatRequest is the request format for the Groq chat-completions API
type groqChatRequest struct {
	Model       string            `json:"model"`
	Messages    []groqChatMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Stream      bool              `json:"stream"`
}

// groqChatResponse is the response from the Groq chat-completions API
type groqChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GroqClient talks to the Groq chat-completions API. Every call goes
// through a circuit breaker so a degraded provider fails fast instead of
// piling up requests.
type GroqClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *log.Logger
}

// NewGroqClient creates a Groq LLM client. The API key is required here,
// not at process startup.
func NewGroqClient(apiKey, model string, temperature float64, maxTokens int, logger *log.Logger) (*GroqClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "groq",
		MaxRequests: 1, // single trial call in half-open
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &GroqClient{
		baseURL:     groqBaseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // LLMs can be slow
		},
		breaker: breaker,
		logger:  logger,
	}, nil
}

// WithBaseURL overrides the API endpoint (used in tests)
func (c *GroqClient) WithBaseURL(url string) *GroqClient {
	c.baseURL = url
	return c
}

// Complete sends a single-prompt chat completion and returns the text
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, prompt)
	})
	if err != nil {
		return "", fmt.Errorf("LLM error: %w", err)
	}
	return result.(string), nil
}

func (c *GroqClient) complete(ctx context.Context, prompt string) (string, error) {
	chatReq := groqChatRequest{
		Model: c.model,
		Messages: []groqChatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Groq API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp groqChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("Groq response contained no choices")
	}

	c.logger.Printf("LLM completion: %d tokens in %.2fs (model: %s)",
		chatResp.Usage.TotalTokens, time.Since(start).Seconds(), chatResp.Model)

	return chatResp.Choices[0].Message.Content, nil
}

// BreakerState reports the current circuit breaker state for health checks
func (c *GroqClient) BreakerState() string {
	return c.breaker.State().String()
}

// Model returns the configured model identifier
func (c *GroqClient) Model() string {
	return c.model
}
