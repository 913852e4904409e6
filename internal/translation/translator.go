package translation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidOutput is returned when a model reply cannot be read as the
	// expected JSON object.
	ErrInvalidOutput = errors.New("model output is not valid JSON")

	// ErrBackendUnavailable is returned while the circuit breaker is open.
	ErrBackendUnavailable = errors.New("translation backend unavailable")
)

// Translator turns text into hiragana, romanji, a Spanish translation and a
// pronunciation guide.
type Translator interface {
	// Translate returns the translation fields for text. hint is an optional
	// ISO 639-1 code of the source language.
	Translate(ctx context.Context, text, hint string) (*Response, error)

	// Name returns the backend name
	Name() string
}

// Config selects and tunes the translation backend.
type Config struct {
	Provider string // "openai" or "gemini"
	Fallback string // optional second provider, "" for none

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string // overrides the API base URL, used by tests and proxies

	GeminiKey   string
	GeminiModel string

	// Circuit breaker; zero failures disables it.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:        "openai",
		OpenAIModel:     "gpt-4o-mini",
		GeminiModel:     "gemini-2.0-flash",
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// NewTranslator builds the configured backend chain: provider, optional
// fallback, optional circuit breaker.
func NewTranslator(ctx context.Context, config *Config) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	primary, err := newBackend(ctx, config.Provider, config)
	if err != nil {
		return nil, err
	}

	t := primary
	if config.Fallback != "" && config.Fallback != config.Provider {
		fallback, err := newBackend(ctx, config.Fallback, config)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		t = WithFallback(primary, fallback)
	}

	if config.BreakerFailures > 0 {
		t = NewBreakerTranslator(t, config.BreakerFailures, config.BreakerCooldown)
	}

	return t, nil
}

func newBackend(ctx context.Context, provider string, config *Config) (Translator, error) {
	switch provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAITranslator(config.OpenAIKey, config.OpenAIModel, config.OpenAIBaseURL), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiTranslator(ctx, config.GeminiKey, config.GeminiModel)

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", provider)
	}
}

// fallbackTranslator tries primary first and falls back to secondary on any
// error except invalid input.
type fallbackTranslator struct {
	primary  Translator
	fallback Translator
}

// WithFallback wraps primary so that failures are retried once on fallback.
func WithFallback(primary, fallback Translator) Translator {
	return &fallbackTranslator{primary: primary, fallback: fallback}
}

func (f *fallbackTranslator) Translate(ctx context.Context, text, hint string) (*Response, error) {
	resp, err := f.primary.Translate(ctx, text, hint)
	if err == nil || errors.Is(err, ErrEmptyText) {
		return resp, err
	}

	fmt.Printf("Primary translator (%s) failed: %v. Falling back to %s\n",
		f.primary.Name(), err, f.fallback.Name())

	return f.fallback.Translate(ctx, text, hint)
}

func (f *fallbackTranslator) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", f.primary.Name(), f.fallback.Name())
}
