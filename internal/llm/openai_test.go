package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid config", config: Config{APIKey: "test-key"}},
		{name: "missing API key", config: Config{}, wantErr: true},
		{name: "custom models", config: Config{APIKey: "test-key", Model: "gpt-4o", ImageModel: "gpt-image-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := newOpenAIProvider(tt.config)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMissingConfig)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, provider)
		})
	}
}

func TestOpenAIProvider_Chat(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1","choices":[{"message":{"role":"assistant","content":"[{\"id\":\"T1\",\"text\":\"hi\"}]"},"index":0}]}`))
	}))
	defer server.Close()

	provider, err := newOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	content, err := provider.Chat(context.Background(), ChatRequest{
		System:      "system text",
		User:        "user text",
		Temperature: 0.25,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"T1","text":"hi"}]`, content)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.25, captured["temperature"], 1e-9)
	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user text", messages[1].(map[string]any)["content"])
}

func TestOpenAIProvider_ChatErrors(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		status        int
		wantRetryable bool
		wantRateLimit bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantRetryable: true, wantRateLimit: true},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, wantRetryable: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"bad"}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider, err := newOpenAIProvider(Config{APIKey: "k", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = provider.Chat(context.Background(), ChatRequest{User: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.wantRetryable, common.IsRetryable(err))
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, common.ErrRateLimit))
		})
	}
}

func TestOpenAIProvider_Image(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	var captured map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	}))
	defer server.Close()

	provider, err := newOpenAIProvider(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	got, err := provider.Image(context.Background(), "a calm room")
	require.NoError(t, err)
	assert.Equal(t, png, got)
	assert.Equal(t, "gpt-image-1-mini", captured["model"])
	assert.Equal(t, "1024x1024", captured["size"])
	assert.Equal(t, "a calm room", captured["prompt"])
}

func TestOpenAIProvider_ImageBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"***not base64***"}]}`))
	}))
	defer server.Close()

	provider, err := newOpenAIProvider(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = provider.Image(context.Background(), "x")
	assert.ErrorIs(t, err, common.ErrAIResponse)
}

func TestAnthropicProvider_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "only json", body["system"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"bestMatchStyles\":[]}"}]}`))
	}))
	defer server.Close()

	provider, err := newAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)

	content, err := provider.Chat(context.Background(), ChatRequest{System: "only json", User: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"bestMatchStyles":[]}`, content)

	_, err = provider.Image(context.Background(), "x")
	assert.ErrorIs(t, err, ErrImageUnsupported)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai", APIKey: "k"})
	require.NoError(t, err)

	_, err = NewProvider(Config{Provider: "Anthropic", APIKey: "k"})
	require.NoError(t, err)

	_, err = NewProvider(Config{Provider: "llama", APIKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}
