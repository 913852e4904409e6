package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/kotoba/internal"
)

// speechFormats maps clip extensions to OpenAI response formats
var speechFormats = map[string]openai.SpeechResponseFormat{
	"mp3":  openai.SpeechResponseFormatMp3,
	"wav":  openai.SpeechResponseFormatWav,
	"opus": openai.SpeechResponseFormatOpus,
	"aac":  openai.SpeechResponseFormatAac,
	"flac": openai.SpeechResponseFormatFlac,
}

// OpenAIProvider speaks Japanese text with the OpenAI speech endpoint.
// Clips are cached by text, voice settings and format when a cache
// directory is configured.
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	cache  string // empty disables the cache
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	p := &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}

	if config.EnableCache && config.CacheDir != "" {
		if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		p.cache = config.CacheDir
	}

	return p, nil
}

// GenerateAudio writes the spoken text to outputFile. The format follows
// the file extension and defaults to mp3.
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateJapaneseText(text); err != nil {
		return err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(outputFile)), ".")
	format, ok := speechFormats[ext]
	if !ok {
		ext, format = "mp3", openai.SpeechResponseFormatMp3
	}

	input := preprocessJapaneseText(text)
	cached := p.cachePath(input, ext)
	if cached != "" {
		if err := linkOrCopy(cached, outputFile); err == nil {
			return nil
		}
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          input,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: format,
	}
	if instr := p.instruction(); instr != "" {
		req.Instructions = instr
	}

	fmt.Printf("OpenAI TTS: %s/%s x%.2f: %q\n", p.config.OpenAIModel, p.config.OpenAIVoice, p.config.OpenAISpeed, input)

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") && supportsInstructions(p.config.OpenAIModel) {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try audio.openai_model tts-1-hd instead", err, p.config.OpenAIModel)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if err := writeAtomic(outputFile, response); err != nil {
		return err
	}

	if cached != "" {
		if err := linkOrCopy(outputFile, cached); err != nil {
			fmt.Printf("Warning: failed to cache clip: %v\n", err)
		}
	}

	return nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func (p *OpenAIProvider) instruction() string {
	if supportsInstructions(p.config.OpenAIModel) {
		return p.config.OpenAIInstruction
	}
	return ""
}

// cachePath returns where the clip for input is cached, sharded by the
// first two characters of its key.
func (p *OpenAIProvider) cachePath(input, ext string) string {
	if p.cache == "" {
		return ""
	}

	key := internal.SpeechKey(
		input,
		p.config.OpenAIModel,
		p.config.OpenAIVoice,
		strconv.FormatFloat(p.config.OpenAISpeed, 'f', 2, 64),
		p.instruction(),
	)
	return filepath.Join(p.cache, key[:2], internal.ClipFileName(key[2:], ext))
}

func supportsInstructions(model string) bool {
	return model == "gpt-4o-mini-tts" || model == "gpt-4o-mini-audio-preview"
}

// preprocessJapaneseText removes punctuation the TTS engine would otherwise
// read out or pause on awkwardly.
func preprocessJapaneseText(text string) string {
	cleaned := strings.TrimSpace(text)

	punctuation := []string{"「", "」", "『", "』", "（", "）", "(", ")", "[", "]", "\"", "'", "・", "-"}
	for _, punct := range punctuation {
		cleaned = strings.ReplaceAll(cleaned, punct, "")
	}

	return strings.TrimSpace(cleaned)
}

// writeAtomic writes r to a temporary file next to dst and renames it into
// place, so concurrent readers never see a partial clip.
func writeAtomic(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".clip-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}

	return os.Rename(tmp.Name(), dst)
}

// linkOrCopy hard-links src to dst, copying when the two live on different
// file systems.
func linkOrCopy(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	os.Remove(dst)
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeAtomic(dst, f)
}
