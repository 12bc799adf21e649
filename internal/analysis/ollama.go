package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultOllamaURL is the local Ollama generate endpoint.
	DefaultOllamaURL = "http://localhost:11434/api/generate"
	// DefaultModel is used when neither config nor request names a model.
	DefaultModel = "qwen3-coder:30b"
	// DefaultTimeout is the upper bound on one generation call.
	DefaultTimeout = 120 * time.Second

	maxErrorBody = 512
)

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// OllamaGenerator calls a single-shot, non-streaming generate endpoint.
type OllamaGenerator struct {
	httpClient *http.Client
	url        string
}

var _ Generator = (*OllamaGenerator)(nil)

// NewOllamaGenerator creates a generator for url with a per-call timeout.
func NewOllamaGenerator(url string, timeout time.Duration) *OllamaGenerator {
	if url == "" {
		url = DefaultOllamaURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaGenerator{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// Generate posts the prompt and returns the "response" field unmodified.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	body, err := json.Marshal(ollamaRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("Generate: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Kind: TransportUnreachable, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("failed to call %s: %w", g.url, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Kind: TransportUnreachable,
			Err:  fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), maxErrorBody)),
		}
	}

	var out ollamaResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		// The envelope is the endpoint's contract, not the model's output.
		return "", &TransportError{Kind: TransportUnreachable, Err: fmt.Errorf("failed to decode response envelope: %w", err)}
	}
	return out.Response, nil
}
