package translation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:5000", "http://localhost:5000/traducir"},
		{"http://localhost:5000/", "http://localhost:5000/traducir"},
		{"http://localhost:5000/traducir", "http://localhost:5000/traducir"},
		{"https://example.com/api", "https://example.com/api/traducir"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			if got := Endpoint(tt.base); got != tt.want {
				t.Errorf("Endpoint(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestClientTranslate_PostsExactText(t *testing.T) {
	var calls int32
	var gotBody Request
	var gotContentType, gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("Request body is not JSON: %s", data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hiragana":"こんにちは","romanji":"konnichiwa","traduccion":"hola","pronunciacion":"kon-ni-chi-wa"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	resp, err := client.Translate(context.Background(), " こんにちは ")
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected exactly 1 request, got %d", calls)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST, got %s", gotMethod)
	}
	if gotPath != "/traducir" {
		t.Errorf("Expected path /traducir, got %s", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", gotContentType)
	}
	if gotBody.Text != " こんにちは " {
		t.Errorf("Expected exact text to be sent, got %q", gotBody.Text)
	}

	if resp.Failed() {
		t.Errorf("Unexpected failure: %s", resp.Error)
	}
	if resp.Hiragana != "こんにちは" || resp.Romanji != "konnichiwa" || resp.Translation != "hola" || resp.Pronunciation != "kon-ni-chi-wa" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.HasAudio() {
		t.Error("Expected no audio")
	}
}

func TestClientTranslate_EmptyText(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 0)
	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := client.Translate(context.Background(), text)
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Translate(%q) error = %v, want ErrEmptyText", text, err)
		}
	}

	if calls != 0 {
		t.Errorf("Expected no requests for empty text, got %d", calls)
	}
}

func TestClientTranslate_Replies(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantError string
		wantAudio string
	}{
		{
			name:      "application error with 400",
			status:    http.StatusBadRequest,
			body:      `{"error":"Texto vacío"}`,
			wantError: "Texto vacío",
		},
		{
			name:      "application error with 200",
			status:    http.StatusOK,
			body:      `{"error":"La respuesta de OpenAI no es un JSON válido"}`,
			wantError: "La respuesta de OpenAI no es un JSON válido",
		},
		{
			name:      "audio url",
			status:    http.StatusOK,
			body:      `{"hiragana":"ねこ","romanji":"neko","traduccion":"gato","pronunciacion":"ne-ko","audio_url":"http://x/audio/1"}`,
			wantAudio: "http://x/audio/1",
		},
		{
			name:   "null audio url",
			status: http.StatusOK,
			body:   `{"hiragana":"ねこ","romanji":"neko","traduccion":"gato","pronunciacion":"ne-ko","audio_url":null}`,
		},
		{
			name:    "server error without message",
			status:  http.StatusInternalServerError,
			body:    `<html>oops</html>`,
			wantErr: ErrBadStatus,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "json array",
			status:  http.StatusOK,
			body:    `[1,2,3]`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "json null",
			status:  http.StatusOK,
			body:    `null`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "empty json array",
			status:  http.StatusOK,
			body:    " []\n",
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "json string",
			status:  http.StatusOK,
			body:    `"hola"`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "empty body",
			status:  http.StatusOK,
			body:    ``,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "null with error status",
			status:  http.StatusBadGateway,
			body:    `null`,
			wantErr: ErrBadStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := NewClient(srv.URL, 0).Translate(context.Background(), "ねこ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Translate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}
			if resp.AudioURL != tt.wantAudio {
				t.Errorf("AudioURL = %q, want %q", resp.AudioURL, tt.wantAudio)
			}
		})
	}
}

func TestClientTranslate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 0).Translate(context.Background(), "ねこ")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Translate() error = %v, want ErrTransport", err)
	}
}
