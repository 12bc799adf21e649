package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used with the gemini backend when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentModel is the part of the genai client the generator uses.
type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator generates text through the Gemini API.
type GeminiGenerator struct {
	models  contentModel
	timeout time.Duration
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a genai client. Credentials come from the
// environment the way the genai SDK resolves them.
func NewGeminiGenerator(ctx context.Context, timeout time.Duration) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGenerator: create genai client: %w", err)
	}
	return newGeminiGenerator(client.Models, timeout), nil
}

func newGeminiGenerator(models contentModel, timeout time.Duration) *GeminiGenerator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GeminiGenerator{models: models, timeout: timeout}
}

// Generate sends the prompt as a single user turn and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", classifyTransport(fmt.Errorf("generate content: %w", err))
	}
	if resp == nil {
		return "", &TransportError{Kind: TransportUnreachable, Err: errors.New("generate content: nil response")}
	}
	return resp.Text(), nil
}
