package gui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/kotoba/internal"
	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/translation"
	"codeberg.org/snonux/kotoba/internal/ui"
)

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	// UI elements
	input        *CustomEntry // "texto"
	submitButton *ttwidget.Button
	clearButton  *ttwidget.Button
	helpButton   *ttwidget.Button
	output       *OutputArea  // "resultado"
	audioPlayer  *AudioPlayer // "audioPlayer"
	statusLabel  *widget.Label
	logViewer    *LogViewer

	handler *ui.Handler
	config  *Config

	// Background requests
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	pending int
}

// Config holds GUI application configuration
type Config struct {
	ServerURL    string
	Timeout      time.Duration
	AudioEnabled bool
	Debug        bool   // log every API response
	TempDir      string // where clips are downloaded
}

// DefaultConfig returns default GUI configuration
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    "http://localhost:5000",
		AudioEnabled: true,
	}
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config == nil {
		config = DefaultConfig()
	} else if config.ServerURL == "" {
		config.ServerURL = DefaultConfig().ServerURL
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		app:    app.NewWithID("org.codeberg.snonux.kotoba"),
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	a.setupUI()

	client := translation.NewClient(config.ServerURL, config.Timeout)

	var element ui.AudioElement
	if config.AudioEnabled {
		element = a.audioPlayer.Element()
	} else {
		a.audioPlayer.Hide()
	}

	a.handler = ui.NewHandler(client, a, element)
	if config.Debug {
		a.handler.SetDebug(a.logViewer)
	}

	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("Kotoba v%s - Traductor de japonés", internal.Version))
	a.window.Resize(fyne.NewSize(640, 560))

	a.input = NewCustomEntry()
	a.input.SetPlaceHolder("Escribe una palabra o frase...")
	a.input.OnSubmitted = func(string) {
		a.onSubmit()
	}
	a.input.SetOnEscape(func() {
		a.window.Canvas().Unfocus()
	})

	a.submitButton = ttwidget.NewButtonWithIcon("Traducir", theme.ConfirmIcon(), a.onSubmit)
	a.submitButton.Importance = widget.HighImportance
	a.clearButton = ttwidget.NewButtonWithIcon("", theme.ContentClearIcon(), a.onClear)
	a.helpButton = ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)

	inputSection := container.NewBorder(
		nil, nil, nil,
		container.NewHBox(a.submitButton, a.clearButton, a.helpButton),
		a.input,
	)

	a.output = NewOutputArea()
	a.audioPlayer = NewAudioPlayer(audio.NewPlayer(a.config.TempDir), a.config.ServerURL)
	a.audioPlayer.Hide()

	a.statusLabel = widget.NewLabel("Listo")
	a.statusLabel.TextStyle = fyne.TextStyle{Italic: true}

	a.logViewer = NewLogViewer()

	content := container.NewBorder(
		container.NewVBox(inputSection, widget.NewSeparator()),
		container.NewVBox(a.audioPlayer, widget.NewSeparator(), a.logViewer, a.statusLabel),
		nil, nil,
		a.output,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()

	a.window.SetOnClosed(func() {
		a.cancel()
		a.audioPlayer.Close()
		a.logViewer.StopCapture()
	})

	a.setupKeyboardShortcuts()
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.submitButton.SetToolTip("Traducir (Enter)")
	a.clearButton.SetToolTip("Limpiar (n)")
	a.helpButton.SetToolTip("Atajos de teclado (h)")
	a.audioPlayer.setupTooltips()
}

// Run starts the GUI application
func (a *Application) Run() {
	a.logViewer.StartCapture()
	a.window.Canvas().Focus(a.input)
	a.window.ShowAndRun()
}

// onSubmit sends the input in the background. A newer submission supersedes
// one still in flight.
func (a *Application) onSubmit() {
	a.window.Canvas().Unfocus()
	a.setPending(1)

	go func() {
		defer a.setPending(-1)

		err := a.handler.Submit(a.ctx)
		switch {
		case err == nil, errors.Is(err, ui.ErrStale), errors.Is(err, translation.ErrEmptyText):
		default:
			fmt.Printf("Error: %v\n", err)
		}
	}()
}

func (a *Application) setPending(delta int) {
	a.mu.Lock()
	a.pending += delta
	pending := a.pending
	a.mu.Unlock()

	status := "Listo"
	if pending > 0 {
		status = "Traduciendo..."
	}
	fyne.Do(func() {
		a.statusLabel.SetText(status)
	})
}

func (a *Application) onClear() {
	a.input.SetText("")
	a.output.Clear()
	a.audioPlayer.load()
	a.audioPlayer.Hide()
	a.window.Canvas().Focus(a.input)
}

func (a *Application) onShowHotkeys() {
	hotkeys := `## Atajos de teclado
**Enter** Traducir  
**Esc** Salir del campo de texto  
**i** Escribir texto  
**p** Reproducir el audio de nuevo  
**n** Limpiar  
**h** Mostrar esta ayuda  
**q** Salir`

	content := widget.NewRichTextFromMarkdown(hotkeys)
	content.Wrapping = fyne.TextWrapWord

	d := dialog.NewCustom("Atajos de teclado", "Cerrar", container.NewPadded(content), a.window)
	d.Resize(fyne.NewSize(360, 300))
	d.Show()
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		// Typing in the input must not trigger shortcuts
		if a.window.Canvas().Focused() == a.input {
			return
		}

		switch r {
		case 'i', 'I':
			a.window.Canvas().Focus(a.input)
		case 'p', 'P':
			a.audioPlayer.Replay()
		case 'n', 'N':
			a.onClear()
		case 'h', 'H':
			a.onShowHotkeys()
		case 'q', 'Q':
			a.window.Close()
		}
	})
}
