package categorize

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"finsight/internal/core"
)

// DefaultModelName is the Gemini model used for classification.
const DefaultModelName = "gemini-2.5-flash"

// GeminiClassifier implements Classifier against the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	labels []string
}

// NewGeminiClassifier creates a classifier restricted to the given label
// set. The API key comes from the client config; an empty key is an error,
// callers should skip constructing the classifier instead. An empty model
// name selects DefaultModelName.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, labels []string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini classifier: empty API key")
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

	return &GeminiClassifier{
		client: client,
		model:  model,
		labels: labels,
	}, nil
}

// Classify asks the model for a single category label. The prompt pins the
// allowed label set; the returned text is cleaned but not validated here.
// The remote tier checks it against the known labels.
func (g *GeminiClassifier) Classify(ctx context.Context, description string, amount core.Money) (string, error) {
	prompt := fmt.Sprintf(
		"You are a financial transaction categorizer. "+
			"Categorize this transaction into exactly one of these categories:\n%s\n\n"+
			"Description: %s\nAmount: %.2f\n\n"+
			"Return only the category name, nothing else.",
		strings.Join(g.labels, ", "), description, amount.Units())

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

	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return cleanModelLabel(raw), nil
}

// cleanModelLabel strips Markdown fences, quotes and surrounding whitespace
// the model sometimes adds despite instructions.
func cleanModelLabel(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	s = strings.Trim(s, `"'`)

	// Keep only the first line if the model rambled.
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
