package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroqClient(t *testing.T, handler http.HandlerFunc) (*GroqClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	client, err := NewGroqClient("test-key", "llama-3.1-8b-instant", 0.7, 1000, logger)
	require.NoError(t, err)
	return client.WithBaseURL(server.URL), server
}

func groqReply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "chatcmpl-1",
			"model": "llama-3.1-8b-instant",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}
}

func TestNewGroqClientRequiresAPIKey(t *testing.T) {
	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	client, err := NewGroqClient("", "llama-3.1-8b-instant", 0.7, 1000, logger)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Nil(t, client)
}

func TestGroqClientComplete(t *testing.T) {
	var gotAuth string
	var gotReq groqChatRequest
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		groqReply("Photosynthesis converts light into chemical energy.")(w, r)
	})

	answer, err := client.Complete(context.Background(), "Explain photosynthesis")
	require.NoError(t, err)

	assert.Equal(t, "Photosynthesis converts light into chemical energy.", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "llama-3.1-8b-instant", gotReq.Model)
	assert.Equal(t, 0.7, gotReq.Temperature)
	assert.Equal(t, 1000, gotReq.MaxTokens)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "Explain photosynthesis", gotReq.Messages[0].Content)
}

func TestGroqClientAPIError(t *testing.T) {
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_request"}`, http.StatusBadRequest)
	})

	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM error")
	assert.Contains(t, err.Error(), "status 400")
}

func TestGroqClientEmptyChoices(t *testing.T) {
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestGroqClientBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	})

	assert.Equal(t, "closed", client.BreakerState())

	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), "hello")
		require.Error(t, err)
	}

	assert.Equal(t, "open", client.BreakerState())
	assert.Equal(t, int32(5), calls.Load())

	// An open breaker rejects without touching the upstream
	_, err := client.Complete(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, int32(5), calls.Load())
}

func TestGroqClientBreakerRecoversAfterTimeout(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			http.Error(w, "upstream down", http.StatusServiceUnavailable)
			return
		}
		groqReply("back online")(w, r)
	})

	// Same trip policy as the real client, but a timeout short enough to test.
	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "groq",
		MaxRequests: 1,
		Timeout:     50 * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	fail.Store(true)
	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), "hello")
		require.Error(t, err)
	}
	require.Equal(t, "open", client.BreakerState())

	// After the timeout the breaker admits one trial request; a success
	// closes it again.
	fail.Store(false)
	time.Sleep(80 * time.Millisecond)

	answer, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "back online", answer)
	assert.Equal(t, "closed", client.BreakerState())

	// Closed again means traffic flows to the upstream as before.
	before := calls.Load()
	_, err = client.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, before+1, calls.Load())
}

func TestGroqClientBreakerStaysClosedOnSuccess(t *testing.T) {
	client, _ := newTestGroqClient(t, groqReply("ok"))

	for i := 0; i < 10; i++ {
		_, err := client.Complete(context.Background(), "hello")
		require.NoError(t, err)
	}
	assert.Equal(t, "closed", client.BreakerState())
}

func TestGroqClientFailuresResetOnSuccess(t *testing.T) {
	var fail atomic.Bool
	client, _ := newTestGroqClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		groqReply("ok")(w, r)
	})

	// Four failures, then a success, then four more failures: the breaker
	// only counts consecutive failures, so it must stay closed.
	fail.Store(true)
	for i := 0; i < 4; i++ {
		client.Complete(context.Background(), "hello")
	}
	fail.Store(false)
	_, err := client.Complete(context.Background(), "hello")
	require.NoError(t, err)

	fail.Store(true)
	for i := 0; i < 4; i++ {
		client.Complete(context.Background(), "hello")
	}
	assert.Equal(t, "closed", client.BreakerState())
}
