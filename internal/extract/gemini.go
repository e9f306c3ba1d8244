package extract

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini is the default extraction provider.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini client. apiKey may be empty, in which case the
// SDK falls back to its own environment lookup.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("extract: create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the prompt plus the attached document and returns the raw
// model text. Low temperature: we want reading, not creativity.
func (g *Gemini) Generate(ctx context.Context, prompt string, payload []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: payload}},
				{Text: prompt},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.4)),
	})
	if err != nil {
		return "", fmt.Errorf("extract: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("extract: empty response from model")
	}
	return text, nil
}
