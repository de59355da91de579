package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIProvider implements Provider for the OpenAI API.
type openAIProvider struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	imageModel string
	imageSize  string
}

// newOpenAIProvider creates a new OpenAI API provider.
func newOpenAIProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = "gpt-image-1-mini"
	}

	imageSize := cfg.ImageSize
	if imageSize == "" {
		imageSize = "1024x1024"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		imageModel: imageModel,
		imageSize:  imageSize,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// Chat sends a chat completion request to OpenAI.
func (c *openAIProvider) Chat(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.User})

	requestBody := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}

	var response openAIResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", c.headers(), requestBody, &response); err != nil {
		return "", fmt.Errorf("OpenAI chat: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", common.ErrAIResponse)
	}

	return response.Choices[0].Message.Content, nil
}

// Image renders prompt with the OpenAI images endpoint and returns the decoded PNG.
func (c *openAIProvider) Image(ctx context.Context, prompt string) ([]byte, error) {
	requestBody := map[string]any{
		"model":  c.imageModel,
		"prompt": prompt,
		"size":   c.imageSize,
	}

	var response openAIImageResponse
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/images/generations", c.headers(), requestBody, &response); err != nil {
		return nil, fmt.Errorf("OpenAI image: %w", err)
	}

	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("%w: no image data returned", common.ErrAIResponse)
	}

	data, err := base64.StdEncoding.DecodeString(response.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", common.ErrAIResponse, err)
	}

	return data, nil
}

func (c *openAIProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// openAIResponse represents the OpenAI chat completion response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

// openAIImageResponse represents the OpenAI images response structure.
type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Created int64 `json:"created"`
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// postJSON posts body as JSON and decodes a 200 response into out. Rate
// limit and server errors come back retryable.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		return common.Retryable(fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return common.Retryable(fmt.Errorf("%w (status %d): %s", common.ErrRateLimit, resp.StatusCode, string(respBody)))
	case resp.StatusCode >= http.StatusInternalServerError:
		return common.Retryable(fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody)))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %w", common.ErrAIResponse, err)
	}
	return nil
}
