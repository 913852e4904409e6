package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice variant (e.g., "ja", "ja+f1")
	Speed     int    // Speech speed in words per minute (default: 140)
	Pitch     int    // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int    // Volume/amplitude, 0 to 200 (default: 100)
}

// DefaultESpeakConfig returns the default configuration for the Japanese voice
func DefaultESpeakConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Voice:     "ja",
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeakProvider implements Provider with the local espeak-ng engine. It is
// used as an offline fallback when the OpenAI voice is unavailable.
type ESpeakProvider struct {
	config *ESpeakConfig
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) (Provider, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultESpeakConfig()
	}

	return &ESpeakProvider{config: config}, nil
}

// GenerateAudio generates audio using espeak-ng
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	if err := ValidateJapaneseText(text); err != nil {
		return err
	}

	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if strings.ToLower(filepath.Ext(outputFile)) == ".wav" {
		return p.generateWAV(ctx, text, outputFile)
	}

	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"
	if err := p.generateWAV(ctx, text, tempWAV); err != nil {
		return err
	}
	defer os.Remove(tempWAV)

	return convertWAVToMP3(ctx, tempWAV, outputFile)
}

func (p *ESpeakProvider) generateWAV(ctx context.Context, text, outputFile string) error {
	cmd := exec.CommandContext(ctx, "espeak-ng", p.args(text, outputFile)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// args builds the espeak-ng command line
func (p *ESpeakProvider) args(text, outputFile string) []string {
	return []string{
		"-v", p.config.Voice,
		"-s", fmt.Sprintf("%d", clamp(p.config.Speed, 80, 450)),
		"-p", fmt.Sprintf("%d", clamp(p.config.Pitch, 0, 99)),
		"-a", fmt.Sprintf("%d", clamp(p.config.Amplitude, 0, 200)),
		"-w", outputFile,
		text,
	}
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ListVoices returns the Japanese espeak-ng voice variants
func ListVoices() []string {
	return []string{
		"ja",    // Default Japanese voice
		"ja+m1", // Male voice 1
		"ja+m3", // Male voice 3
		"ja+f1", // Female voice 1
		"ja+f3", // Female voice 3
	}
}

// convertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func convertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}
