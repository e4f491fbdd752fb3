package insights

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for rephrasing.
const DefaultModelName = "gemini-2.5-flash"

// GeminiRephraser implements Rephraser against the Gemini API.
type GeminiRephraser struct {
	client *genai.Client
	model  string
}

// NewGeminiRephraser creates a rephraser with the given API key. An empty
// model name selects DefaultModelName.
func NewGeminiRephraser(ctx context.Context, apiKey, model string) (*GeminiRephraser, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini rephraser: empty API key")
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiRephraser{client: client, model: model}, nil
}

// Rephrase asks the model to rewrite the templated summary in a friendlier
// voice without changing any numbers.
func (g *GeminiRephraser) Rephrase(ctx context.Context, text string) (string, error) {
	prompt := "Rewrite this financial summary in a friendly, encouraging tone. " +
		"Keep every number and category name exactly as given. " +
		"Return only the rewritten text, no preamble.\n\n" + text

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return out, nil
}
