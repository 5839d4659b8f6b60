package extern

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPBackend is a minimal OpenAI/Claude/DeepSeek-compatible chat-completions
// client. No third-party AI SDK appears anywhere in the retrieved corpus
// (see DESIGN.md), so this is built directly on net/http.
type HTTPBackend struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

func NewHTTPBackend(baseURL, apiKey, model string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: AiCallerTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Complete sends prompt as a single user message to the configured
// chat-completions endpoint and returns the first choice's content.
func (h *HTTPBackend) Complete(prompt string) (string, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model:    h.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("http backend: encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), AiCallerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("http backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http backend: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("http backend: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http backend: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("http backend: decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("http backend: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}
