package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// maxChatModels caps the chat section; the remainder is summarised
const maxChatModels = 10

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
	out    io.Writer
}

// NewLister creates a new model lister writing to out. An empty baseURL uses
// the OpenAI API.
func NewLister(apiKey, baseURL string, out io.Writer) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
		out:    out,
	}
}

// Categories holds model ids by use
type Categories struct {
	Speech []string
	Chat   []string
}

// Categorize sorts model ids into speech and chat models. Other models are
// ignored.
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
			c.Speech = append(c.Speech, id)
		case strings.Contains(id, "gpt") || strings.Contains(id, "chat"):
			c.Chat = append(c.Chat, id)
		}
	}

	sort.Strings(c.Speech)
	sort.Strings(c.Chat)
	return c
}

// ListAvailableModels prints the speech and chat models of the account
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .kotoba.yaml")
	}

	list, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		ids = append(ids, model.ID)
	}
	c := Categorize(ids)

	fmt.Fprintln(l.out, "Available OpenAI Models:")

	fmt.Fprintln(l.out, "\nText-to-Speech Models (audio.openai_model):")
	if len(c.Speech) == 0 {
		fmt.Fprintln(l.out, "  No TTS models found")
	}
	for _, id := range c.Speech {
		fmt.Fprintf(l.out, "  %s\n", id)
	}

	fmt.Fprintln(l.out, "\nChat Models (translate.openai_model):")
	if len(c.Chat) == 0 {
		fmt.Fprintln(l.out, "  No chat models found")
	}
	shown := c.Chat
	if len(shown) > maxChatModels {
		shown = shown[:maxChatModels]
	}
	for _, id := range shown {
		fmt.Fprintf(l.out, "  %s\n", id)
	}
	if rest := len(c.Chat) - len(shown); rest > 0 {
		fmt.Fprintf(l.out, "  ... and %d more models\n", rest)
	}

	return nil
}
