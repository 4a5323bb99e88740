package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

func TestGenerate(t *testing.T) {
	var got GenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(GenerateResponse{Model: "tinyllama", Response: `"keywords": ["soup"]}`, Done: true})
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL, Model: "tinyllama", Timeout: time.Second}, zaptest.NewLogger(t))
	out, err := client.Generate(context.Background(), "Parse the query: 'soup'\nJSON: {", outbound.GenerateOptions{MaxTokens: 200})

	require.NoError(t, err)
	assert.Equal(t, `"keywords": ["soup"]}`, out)
	assert.Equal(t, "tinyllama", got.Model)
	assert.False(t, got.Stream)
	assert.EqualValues(t, 200, got.Options["num_predict"])
	assert.Equal(t, "ollama:tinyllama", client.Name())
}

func TestGenerate_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'tinyllama' not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL}, zaptest.NewLogger(t))
	_, err := client.Generate(context.Background(), "prompt", outbound.GenerateOptions{})

	assert.ErrorContains(t, err, "status 404")
}

func TestGenerate_RespectsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{Host: server.URL}, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "prompt", outbound.GenerateOptions{MaxTokens: 10})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Host: server.URL}, zaptest.NewLogger(t))
	assert.NoError(t, client.HealthCheck(context.Background()))
}
