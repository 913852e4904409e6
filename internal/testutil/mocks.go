package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"codeberg.org/snonux/kotoba/internal/translation"
)

// SampleResponse returns the translation of こんにちは
func SampleResponse() *translation.Response {
	return &translation.Response{
		Hiragana:      "こんにちは",
		Romanji:       "konnichiwa",
		Translation:   "hola",
		Pronunciation: "kon-ni-chi-wa",
	}
}

// MockTranslator mocks a translation backend
type MockTranslator struct {
	Responses map[string]*translation.Response
	Errors    map[string]error

	mu    sync.Mutex
	Calls []string
}

// Translate returns the canned response for text, SampleResponse otherwise
func (m *MockTranslator) Translate(ctx context.Context, text, hint string) (*translation.Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf("Translate: %s (hint=%s)", text, hint))
	m.mu.Unlock()

	if err, ok := m.Errors[text]; ok {
		return nil, err
	}

	if resp, ok := m.Responses[text]; ok {
		r := *resp
		return &r, nil
	}

	return SampleResponse(), nil
}

// Name returns the backend name
func (m *MockTranslator) Name() string {
	return "mock"
}

// MockSpeech mocks a speech provider writing a fake MP3
type MockSpeech struct {
	Err error

	mu    sync.Mutex
	Calls []string
}

// GenerateAudio writes MP3Header to outputFile
func (m *MockSpeech) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(outputFile, MP3Header, 0644)
}

// Name returns the provider name
func (m *MockSpeech) Name() string {
	return "mock-speech"
}

// IsAvailable always succeeds
func (m *MockSpeech) IsAvailable() error {
	return nil
}

// TranslationServer is a fake translation endpoint recording what it receives
type TranslationServer struct {
	*httptest.Server

	// Status and Body are the reply; Body is encoded as JSON
	Status int
	Body   any

	mu       sync.Mutex
	requests []translation.Request
	types    []string
}

// NewTranslationServer starts a fake endpoint answering SampleResponse. It is
// closed when the test ends.
func NewTranslationServer(t *testing.T) *TranslationServer {
	t.Helper()

	s := &TranslationServer{Status: http.StatusOK, Body: SampleResponse()}
	mux := http.NewServeMux()
	mux.HandleFunc(translation.EndpointPath, s.handle)
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *TranslationServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req translation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.types = append(s.types, r.Header.Get("Content-Type"))
	status, body := s.Status, s.Body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Requests returns the requests received so far
func (s *TranslationServer) Requests() []translation.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]translation.Request(nil), s.requests...)
}

// ContentTypes returns the Content-Type header of every request
func (s *TranslationServer) ContentTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.types...)
}
