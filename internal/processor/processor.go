package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/cli"
	"codeberg.org/snonux/kotoba/internal/detect"
	"codeberg.org/snonux/kotoba/internal/gui"
	"codeberg.org/snonux/kotoba/internal/history"
	"codeberg.org/snonux/kotoba/internal/models"
	"codeberg.org/snonux/kotoba/internal/server"
	"codeberg.org/snonux/kotoba/internal/translation"
	"codeberg.org/snonux/kotoba/internal/ui"
)

// Processor runs the mode selected on the command line
type Processor struct {
	flags  *cli.Flags
	out    io.Writer
	errOut io.Writer
}

// NewProcessor creates a processor writing to stdout and stderr
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{
		flags:  flags,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

func (p *Processor) serverURL() string {
	if url := viper.GetString("client.server_url"); url != "" {
		return url
	}
	return p.flags.ServerURL
}

func (p *Processor) audioEnabled() bool {
	return !p.flags.NoAudio && viper.GetBool("client.audio")
}

// ProcessText translates text once and renders it in the terminal
func (p *Processor) ProcessText(ctx context.Context, text string) error {
	format := viper.GetString("client.format")
	if format == "" {
		format = p.flags.Format
	}

	view, err := ui.NewWriterView(text, p.out, p.errOut, format)
	if err != nil {
		return err
	}

	client := translation.NewClient(p.serverURL(), viper.GetDuration("client.timeout"))

	var element ui.AudioElement
	var player *ui.PlayerAudio
	if p.audioEnabled() {
		player, err = ui.NewPlayerAudio(audio.NewPlayer(""), p.serverURL(), p.errOut)
		if err != nil {
			return err
		}
		element = player
	}

	handler := ui.NewHandler(client, view, element)
	if p.flags.Debug {
		handler.SetDebug(p.errOut)
	}

	if err := handler.Submit(ctx); err != nil {
		return err
	}

	// Let the clip finish before the process exits
	if player != nil {
		if err := player.Wait(ctx); err != nil {
			fmt.Fprintf(p.errOut, "Playback ended with error: %v\n", err)
		}
	}

	return nil
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	guiConfig := &gui.Config{
		ServerURL:    p.serverURL(),
		Timeout:      viper.GetDuration("client.timeout"),
		AudioEnabled: p.audioEnabled(),
		Debug:        p.flags.Debug,
		TempDir:      filepath.Join(os.TempDir(), "kotoba"),
	}

	app := gui.New(guiConfig)
	app.Run()

	return nil
}

// TranslatorConfig builds the backend configuration from viper
func (p *Processor) TranslatorConfig() *translation.Config {
	config := translation.DefaultConfig()

	if v := viper.GetString("translate.provider"); v != "" {
		config.Provider = v
	}
	config.Fallback = viper.GetString("translate.fallback")
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIBaseURL = viper.GetString("translate.openai_base_url")
	config.GeminiKey = cli.GetGeminiKey()
	if v := viper.GetString("translate.openai_model"); v != "" {
		config.OpenAIModel = v
	}
	if v := viper.GetString("translate.gemini_model"); v != "" {
		config.GeminiModel = v
	}
	if viper.IsSet("translate.breaker_failures") {
		config.BreakerFailures = viper.GetUint32("translate.breaker_failures")
	}
	if v := viper.GetDuration("translate.breaker_cooldown"); v > 0 {
		config.BreakerCooldown = v
	}

	return config
}

// SpeechConfig builds the speech provider configuration from viper
func (p *Processor) SpeechConfig() *audio.Config {
	config := audio.DefaultProviderConfig()

	if v := viper.GetString("audio.provider"); v != "" {
		config.Provider = v
	}
	config.Fallback = viper.GetString("audio.fallback")
	if v := viper.GetString("audio.format"); v != "" {
		config.OutputFormat = v
	}
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIBaseURL = viper.GetString("audio.openai_base_url")
	if v := viper.GetString("audio.openai_model"); v != "" {
		config.OpenAIModel = v
	}
	if v := viper.GetString("audio.openai_voice"); v != "" {
		config.OpenAIVoice = v
	}
	if v := viper.GetFloat64("audio.openai_speed"); v > 0 {
		config.OpenAISpeed = v
	}
	if v := viper.GetString("audio.openai_instruction"); v != "" {
		config.OpenAIInstruction = v
	}
	if dir := viper.GetString("audio.cache_dir"); dir != "" {
		config.EnableCache = true
		config.CacheDir = dir
	}

	return config
}

// NewServer assembles the endpoint from the configuration
func (p *Processor) NewServer(ctx context.Context) (*server.Server, func(), error) {
	translator, err := translation.NewTranslator(ctx, p.TranslatorConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create translator: %w", err)
	}

	deps := server.Deps{
		Translator: translator,
		Detector:   detect.New(),
	}
	cleanup := func() {}

	if viper.GetBool("audio.enabled") && !p.flags.NoSpeech {
		speechConfig := p.SpeechConfig()
		speech, err := audio.NewProvider(speechConfig)
		if err == nil {
			err = speech.IsAvailable()
		}
		if err != nil {
			fmt.Fprintf(p.errOut, "Audio disabled: %v\n", err)
		} else {
			clips, err := audio.NewStore(viper.GetString("audio.dir"), viper.GetDuration("audio.ttl"))
			if err != nil {
				return nil, nil, err
			}
			deps.Speech = speech
			deps.Clips = clips
		}
	}

	if path := viper.GetString("history.db"); path != "" {
		store, err := history.Open(path)
		if err != nil {
			fmt.Fprintf(p.errOut, "History disabled: %v\n", err)
		} else {
			deps.History = store
			cleanup = func() { store.Close() }
		}
	}

	srv, err := server.New(&server.Config{
		Listen:      viper.GetString("server.listen"),
		PublicURL:   viper.GetString("server.public_url"),
		AudioFormat: viper.GetString("audio.format"),
		AccessLog:   p.flags.AccessLog,
	}, deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return srv, cleanup, nil
}

// Serve runs the endpoint until interrupted
func (p *Processor) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := p.NewServer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(p.out, "Kotoba endpoint on %s%s\n", srv.Addr(), translation.EndpointPath)
	return srv.Listen(ctx)
}

// ShowHistory prints the most recent translations
func (p *Processor) ShowHistory(ctx context.Context) error {
	path := viper.GetString("history.db")
	if path == "" {
		path = p.flags.HistoryDB
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(ctx, p.flags.Limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No translations yet")
		return nil
	}

	for _, e := range entries {
		audioMark := ""
		if e.HasAudio {
			audioMark = " ♪"
		}
		fmt.Fprintf(p.out, "%s  %s → %s (%s, %s) [%s]%s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Text, e.Translation,
			e.Hiragana, e.Romanji, e.Backend, audioMark)
	}

	return nil
}

// ListModels prints the OpenAI models available to the key
func (p *Processor) ListModels(ctx context.Context) error {
	lister := models.NewLister(cli.GetOpenAIKey(), viper.GetString("translate.openai_base_url"), p.out)
	return lister.ListAvailableModels(ctx)
}
