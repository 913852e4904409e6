package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/translation"
)

type mockTranslator struct {
	mu    sync.Mutex
	texts []string
	hints []string
	resp  *translation.Response
	err   error
}

func (m *mockTranslator) Translate(ctx context.Context, text, hint string) (*translation.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	m.hints = append(m.hints, hint)
	if m.err != nil {
		return nil, m.err
	}
	resp := *m.resp
	return &resp, nil
}

func (m *mockTranslator) Name() string { return "mock" }

type mockSpeech struct {
	err   error
	texts []string
}

func (m *mockSpeech) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outputFile, []byte("ID3 fake mp3"), 0644)
}

func (m *mockSpeech) Name() string       { return "mock-speech" }
func (m *mockSpeech) IsAvailable() error { return nil }

type fixedDetector string

func (d fixedDetector) Detect(text string) string { return string(d) }

type mockRecorder struct {
	entries []string
}

func (m *mockRecorder) Record(ctx context.Context, text, language, backend string, resp *translation.Response) (string, error) {
	m.entries = append(m.entries, text+"|"+language+"|"+backend+"|"+resp.Translation)
	return "id", nil
}

func sampleResponse() *translation.Response {
	return &translation.Response{
		Hiragana:      "こんにちは",
		Romanji:       "konnichiwa",
		Translation:   "hola",
		Pronunciation: "kon-ni-chi-wa",
	}
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	s, err := New(&Config{Listen: ":0"}, deps)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func post(t *testing.T, s *Server, body string) (int, translation.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, translation.EndpointPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var out translation.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, out
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestNewRequiresTranslator(t *testing.T) {
	if _, err := New(nil, Deps{}); err == nil {
		t.Error("expected error without translator")
	}
	if _, err := New(nil, Deps{Translator: &mockTranslator{}, Speech: &mockSpeech{}}); err == nil {
		t.Error("expected error for speech without clip store")
	}
}

func TestListenAddr(t *testing.T) {
	t.Setenv("PORT", "")
	if got := listenAddr(); got != DefaultListen {
		t.Errorf("listenAddr() = %q, want %q", got, DefaultListen)
	}

	t.Setenv("PORT", "8080")
	if got := listenAddr(); got != ":8080" {
		t.Errorf("listenAddr() = %q, want :8080", got)
	}
}

func TestTranslateRequestErrors(t *testing.T) {
	tr := &mockTranslator{resp: sampleResponse()}
	s := newTestServer(t, Deps{Translator: tr})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"texto":`, MsgInvalidJSON},
		{"not an object", `"hola"`, MsgInvalidJSON},
		{"empty", `{"texto":""}`, MsgEmptyText},
		{"whitespace", `{"texto":"  \n"}`, MsgEmptyText},
		{"missing", `{}`, MsgEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := post(t, s, tt.body)
			if code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
			if out.Error != tt.want {
				t.Errorf("expected error %q, got %q", tt.want, out.Error)
			}
		})
	}

	if len(tr.texts) != 0 {
		t.Errorf("backend should not be called, got %v", tr.texts)
	}
}

func TestTranslateBackendErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
		want string
	}{
		{translation.ErrInvalidOutput, http.StatusBadGateway, MsgInvalidOutput},
		{translation.ErrBackendUnavailable, http.StatusServiceUnavailable, MsgUnavailable},
		{errors.New("boom"), http.StatusBadGateway, MsgBackendFailed},
	}

	for _, tt := range tests {
		s := newTestServer(t, Deps{Translator: &mockTranslator{err: tt.err}})
		code, out := post(t, s, `{"texto":"hola"}`)
		if code != tt.code {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.code, code)
		}
		if out.Error != tt.want {
			t.Errorf("%v: expected error %q, got %q", tt.err, tt.want, out.Error)
		}
	}
}

func TestTranslateSuccess(t *testing.T) {
	tr := &mockTranslator{resp: sampleResponse()}
	rec := &mockRecorder{}
	s := newTestServer(t, Deps{Translator: tr, Detector: fixedDetector("es"), History: rec})

	// Decomposed が (か + combining dakuten) is normalised to the composed form
	code, out := post(t, s, `{"texto":" \u304b\u3099 "}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", code, out.Error)
	}

	if out != *sampleResponse() {
		t.Errorf("unexpected response %+v", out)
	}
	if tr.texts[0] != "\u304c" {
		t.Errorf("expected NFC text, got %q", tr.texts[0])
	}
	if tr.hints[0] != "es" {
		t.Errorf("expected hint es, got %q", tr.hints[0])
	}
	if len(rec.entries) != 1 || rec.entries[0] != "\u304c|es|mock|hola" {
		t.Errorf("unexpected history %v", rec.entries)
	}
}

func TestTranslateWithAudio(t *testing.T) {
	clips, err := audio.NewStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	speech := &mockSpeech{}
	s := newTestServer(t, Deps{
		Translator: &mockTranslator{resp: sampleResponse()},
		Speech:     speech,
		Clips:      clips,
	})

	code, out := post(t, s, `{"texto":"hello"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.HasPrefix(out.AudioURL, "/audio/") {
		t.Fatalf("expected audio URL, got %q", out.AudioURL)
	}
	if len(speech.texts) != 1 || speech.texts[0] != "こんにちは" {
		t.Errorf("expected the hiragana to be spoken, got %v", speech.texts)
	}

	code, body := get(t, s, out.AudioURL)
	if code != http.StatusOK {
		t.Fatalf("expected 200 for clip, got %d", code)
	}
	if string(body) != "ID3 fake mp3" {
		t.Errorf("unexpected clip body %q", body)
	}
}

func TestTranslateSpeechFailureKeepsTranslation(t *testing.T) {
	clips, err := audio.NewStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	s := newTestServer(t, Deps{
		Translator: &mockTranslator{resp: sampleResponse()},
		Speech:     &mockSpeech{err: errors.New("quota exceeded")},
		Clips:      clips,
	})

	code, out := post(t, s, `{"texto":"hello"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if out.AudioURL != "" {
		t.Errorf("expected no audio URL, got %q", out.AudioURL)
	}
	if clips.Len() != 0 {
		t.Errorf("expected no clips, got %d", clips.Len())
	}
}

func TestTranslateSkipsSpeechWithoutKana(t *testing.T) {
	clips, err := audio.NewStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	resp := sampleResponse()
	resp.Hiragana = "konnichiwa"
	speech := &mockSpeech{}
	s := newTestServer(t, Deps{Translator: &mockTranslator{resp: resp}, Speech: speech, Clips: clips})

	if code, out := post(t, s, `{"texto":"hello"}`); code != http.StatusOK || out.AudioURL != "" {
		t.Errorf("expected 200 without audio, got %d %q", code, out.AudioURL)
	}
	if len(speech.texts) != 0 {
		t.Errorf("speech should not be called, got %v", speech.texts)
	}
}

func TestServeClipErrors(t *testing.T) {
	clips, err := audio.NewStore(t.TempDir(), time.Nanosecond)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	id, path := clips.Reserve("mp3")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write clip: %v", err)
	}
	if _, err := clips.Commit(id, path, "ねこ"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	s := newTestServer(t, Deps{Translator: &mockTranslator{resp: sampleResponse()}, Clips: clips})

	if code, _ := get(t, s, "/audio/"+id); code != http.StatusGone {
		t.Errorf("expected 410 for expired clip, got %d", code)
	}
	if code, _ := get(t, s, "/audio/unknown"); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown clip, got %d", code)
	}

	noClips := newTestServer(t, Deps{Translator: &mockTranslator{resp: sampleResponse()}})
	if code, _ := get(t, noClips, "/audio/"+id); code != http.StatusNotFound {
		t.Errorf("expected 404 without clip store, got %d", code)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Deps{Translator: &mockTranslator{resp: sampleResponse()}})

	code, body := get(t, s, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if out["status"] != "ok" || out["backend"] != "mock" {
		t.Errorf("unexpected health %v", out)
	}
}

func TestPublicURLPrefix(t *testing.T) {
	clips, err := audio.NewStore(t.TempDir(), time.Minute)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	s, err := New(&Config{PublicURL: "https://kotoba.example.org/"}, Deps{
		Translator: &mockTranslator{resp: sampleResponse()},
		Speech:     &mockSpeech{},
		Clips:      clips,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, out := post(t, s, `{"texto":"hello"}`)
	if !strings.HasPrefix(out.AudioURL, "https://kotoba.example.org/audio/") {
		t.Errorf("unexpected audio URL %q", out.AudioURL)
	}
}
