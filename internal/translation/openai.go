package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates through an OpenAI chat completion
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAITranslator creates a new OpenAI translator. An empty baseURL
// uses the public API.
func NewOpenAITranslator(apiKey, model, baseURL string) *OpenAITranslator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAITranslator{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

// Translate asks the model for the four translation fields
func (t *OpenAITranslator) Translate(ctx context.Context, text, hint string) (*Response, error) {
	if t.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text, hint),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   300,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	content := resp.Choices[0].Message.Content
	fmt.Printf("OpenAI reply: %s\n", content)

	return ParseModelOutput(content)
}

// Name returns the backend name
func (t *OpenAITranslator) Name() string {
	return "openai"
}
