package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompatible talks to any endpoint speaking the OpenAI chat API
// (OpenAI itself, OpenRouter, a local gateway). Alternate provider for
// deployments without Gemini access.
type OpenAICompatible struct {
	client *openai.Client
	model  string
}

// NewOpenAICompatible builds the provider against the given base URL.
func NewOpenAICompatible(apiKey, baseURL, model string) *OpenAICompatible {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompatible{client: openai.NewClientWithConfig(cfg), model: model}
}

// Generate sends the prompt with the document attached. Images travel as a
// data-URI image part; textual payloads (XML invoices, plain text) are
// inlined into the prompt. Other binary types are rejected here; route
// PDFs through the Gemini provider.
func (o *OpenAICompatible) Generate(ctx context.Context, prompt string, payload []byte, mimeType string) (string, error) {
	var msg openai.ChatCompletionMessage
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(payload))
		msg = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: dataURI},
				},
			},
		}
	case strings.HasPrefix(mimeType, "text/"), strings.Contains(mimeType, "xml"), strings.Contains(mimeType, "json"):
		msg = openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt + "\n\nDocumento:\n" + string(payload),
		}
	default:
		return "", fmt.Errorf("extract: media type %s not supported by the openai provider", mimeType)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("extract: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("extract: empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}
