package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), "json_object") {
			t.Errorf("Expected JSON response format in request: %s", data)
		}

		reply := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	}))
}

func TestNewOpenAITranslator(t *testing.T) {
	translator := NewOpenAITranslator("test-api-key", "", "")

	if translator == nil {
		t.Fatal("NewOpenAITranslator returned nil")
	}
	if translator.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", translator.apiKey)
	}
	if translator.model != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", translator.model)
	}
	if translator.client == nil {
		t.Error("OpenAI client not initialized")
	}
	if translator.Name() != "openai" {
		t.Errorf("Name() = %s, want openai", translator.Name())
	}
}

func TestOpenAITranslator_NoAPIKey(t *testing.T) {
	translator := NewOpenAITranslator("", "", "")

	_, err := translator.Translate(context.Background(), "ねこ", "")
	if err == nil || err.Error() != "OpenAI API key not found" {
		t.Errorf("Expected 'OpenAI API key not found' error, got: %v", err)
	}
}

func TestOpenAITranslator_Translate(t *testing.T) {
	srv := chatServer(t, `{"hiragana":"こんにちは","romanji":"konnichiwa","traduccion":"hola","pronunciacion":"kon-ni-chi-wa"}`)
	defer srv.Close()

	translator := NewOpenAITranslator("test-key", "gpt-4o-mini", srv.URL+"/v1")
	resp, err := translator.Translate(context.Background(), "hola", "es")
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}
	if resp.Hiragana != "こんにちは" || resp.Translation != "hola" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestOpenAITranslator_InvalidOutput(t *testing.T) {
	srv := chatServer(t, "no JSON here")
	defer srv.Close()

	translator := NewOpenAITranslator("test-key", "gpt-4o-mini", srv.URL+"/v1")
	_, err := translator.Translate(context.Background(), "hola", "")
	if !errors.Is(err, ErrInvalidOutput) {
		t.Errorf("Translate() error = %v, want ErrInvalidOutput", err)
	}
}

func TestOpenAITranslator_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	translator := NewOpenAITranslator(apiKey, "", "")
	resp, err := translator.Translate(context.Background(), "こんにちは", "ja")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if resp.Romanji == "" {
		t.Error("Got empty romanji")
	}
	t.Logf("Translation of 'こんにちは': %+v", resp)
}
