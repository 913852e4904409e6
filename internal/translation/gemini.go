package translation

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// GeminiTranslator translates through the Gemini API
type GeminiTranslator struct {
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a new Gemini translator
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiTranslator{
		model:  model,
		client: client,
	}, nil
}

// Translate asks the model for the four translation fields
func (t *GeminiTranslator) Translate(ctx context.Context, text, hint string) (*Response, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.3),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(buildPrompt(text, hint)), config)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	content := resp.Text()
	fmt.Printf("Gemini reply: %s\n", content)

	return ParseModelOutput(content)
}

// Name returns the backend name
func (t *GeminiTranslator) Name() string {
	return "gemini"
}
