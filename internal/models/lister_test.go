package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewLister(t *testing.T) {
	lister := NewLister("test-api-key", "", &bytes.Buffer{})

	if lister == nil {
		t.Fatal("NewLister returned nil")
	}

	if lister.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", lister.apiKey)
	}

	if lister.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestCategorize(t *testing.T) {
	c := Categorize([]string{"gpt-4o-mini", "tts-1", "dall-e-3", "gpt-4o-mini-tts", "whisper-1", "chatgpt-4o-latest"})

	wantSpeech := []string{"gpt-4o-mini-tts", "tts-1"}
	wantChat := []string{"chatgpt-4o-latest", "gpt-4o-mini"}

	if fmt.Sprint(c.Speech) != fmt.Sprint(wantSpeech) {
		t.Errorf("Speech = %v, want %v", c.Speech, wantSpeech)
	}
	if fmt.Sprint(c.Chat) != fmt.Sprint(wantChat) {
		t.Errorf("Chat = %v, want %v", c.Chat, wantChat)
	}
}

func TestListAvailableModels_NoAPIKey(t *testing.T) {
	lister := NewLister("", "", &bytes.Buffer{})

	err := lister.ListAvailableModels(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	if !strings.Contains(err.Error(), "OpenAI API key not found") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestListAvailableModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}

		var data []map[string]string
		for i := 0; i < 12; i++ {
			data = append(data, map[string]string{"id": fmt.Sprintf("gpt-test-%02d", i), "object": "model"})
		}
		data = append(data, map[string]string{"id": "tts-1", "object": "model"})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	}))
	defer server.Close()

	var out bytes.Buffer
	lister := NewLister("test-key", server.URL+"/v1", &out)

	if err := lister.ListAvailableModels(context.Background()); err != nil {
		t.Fatalf("ListAvailableModels failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"tts-1", "gpt-test-00", "gpt-test-09", "... and 2 more models"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "gpt-test-11") {
		t.Errorf("output should be capped:\n%s", got)
	}
}
