package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/logger"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) config.Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var cfg config.Config
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = srv.URL + "/v1"
	cfg.LLM.Model = "test-model"
	return cfg
}

func completion(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestNewOpenAILLMAdapter_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAILLMAdapter(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}

func TestGenerateChatResponse(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion("\n  I build compilers.  \n"))
	})

	adapter, err := NewOpenAILLMAdapter(cfg, logger.NewNop())
	require.NoError(t, err)

	text, err := adapter.GenerateChatResponse(context.Background(), "write a bio")
	require.NoError(t, err)
	assert.Equal(t, "I build compilers.", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, maxBioTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "write a bio", got.Messages[0].Content)
}

func TestGenerateChatResponse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
			},
		},
		{
			name: "blank content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(completion("   "))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := NewOpenAILLMAdapter(newTestServer(t, tt.handler), logger.NewNop())
			require.NoError(t, err)

			_, err = adapter.GenerateChatResponse(context.Background(), "write a bio")
			assert.Error(t, err)
		})
	}
}

func TestGenerateChatResponse_HonoursContext(t *testing.T) {
	release := make(chan struct{})
	cfg := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	adapter, err := NewOpenAILLMAdapter(cfg, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = adapter.GenerateChatResponse(ctx, "write a bio")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
