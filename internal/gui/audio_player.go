package gui

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/ui"
)

// AudioPlayer is the audio element ("audioPlayer") of the window. It
// downloads the clip of the last translation and plays it locally.
type AudioPlayer struct {
	widget.BaseWidget

	container   *fyne.Container
	playButton  *ttwidget.Button
	stopButton  *ttwidget.Button
	statusLabel *widget.Label

	player    *audio.Player
	serverURL string

	mu       sync.Mutex
	source   string
	file     string // downloaded clip of source
	playback *audio.Playback
}

// NewAudioPlayer creates a new audio player widget. Relative sources are
// resolved against serverURL.
func NewAudioPlayer(player *audio.Player, serverURL string) *AudioPlayer {
	p := &AudioPlayer{player: player, serverURL: serverURL}

	p.playButton = ttwidget.NewButton("", p.onPlay)
	p.playButton.Icon = theme.MediaPlayIcon()

	p.stopButton = ttwidget.NewButton("", p.onStop)
	p.stopButton.Icon = theme.MediaStopIcon()
	p.stopButton.Disable()

	p.statusLabel = widget.NewLabel("Sin audio")

	p.container = container.NewHBox(
		p.playButton,
		p.stopButton,
		layout.NewSpacer(),
		p.statusLabel,
	)

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *AudioPlayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.container)
}

// setupTooltips must run after the window tooltip layer exists
func (p *AudioPlayer) setupTooltips() {
	p.playButton.SetToolTip("Reproducir de nuevo (p)")
	p.stopButton.SetToolTip("Detener")
}

// Source returns the resolved clip URL
func (p *AudioPlayer) Source() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// setSource switches to a new clip, deleting the download of the old one
func (p *AudioPlayer) setSource(url string) {
	p.mu.Lock()
	old := p.file
	p.source = ui.ResolveURL(p.serverURL, url)
	p.file = ""
	p.mu.Unlock()

	if old != "" {
		os.Remove(old)
	}
}

// Close stops playback and deletes the downloaded clip
func (p *AudioPlayer) Close() {
	p.load()

	p.mu.Lock()
	file := p.file
	p.file = ""
	p.mu.Unlock()

	if file != "" {
		os.Remove(file)
	}
}

// load stops the current playback
func (p *AudioPlayer) load() {
	p.mu.Lock()
	pb := p.playback
	p.playback = nil
	p.mu.Unlock()

	if pb != nil {
		pb.Stop()
	}
}

// play downloads the clip and starts it. Safe to call off the UI thread.
// Nothing starts once ctx is done or the source changed during the download.
func (p *AudioPlayer) play(ctx context.Context) error {
	p.mu.Lock()
	source, file := p.source, p.file
	p.mu.Unlock()

	if source == "" {
		return fmt.Errorf("no audio source set")
	}

	fetched := false
	if file == "" {
		fyne.Do(func() { p.statusLabel.SetText("Descargando audio...") })

		var err error
		file, err = p.player.Fetch(ctx, source)
		if err != nil {
			fyne.Do(func() { p.statusLabel.SetText("Audio no disponible") })
			return err
		}
		fetched = true
	}

	p.mu.Lock()
	if err := ctx.Err(); err != nil || p.source != source {
		p.mu.Unlock()
		if fetched {
			os.Remove(file)
		}
		if err == nil {
			err = fmt.Errorf("audio source changed")
		}
		return err
	}

	pb, err := p.player.Start(file)
	if err != nil {
		p.mu.Unlock()
		if fetched {
			os.Remove(file)
		}
		fyne.Do(func() { p.statusLabel.SetText(fmt.Sprintf("Error: %v", err)) })
		return err
	}

	if p.playback != nil {
		p.playback.Stop()
	}
	p.file = file
	p.playback = pb
	p.mu.Unlock()

	name := path.Base(source)
	fyne.Do(func() {
		p.statusLabel.SetText("Reproduciendo: " + name)
		p.stopButton.Enable()
	})

	go func() {
		<-pb.Done()
		fyne.Do(func() {
			p.stopButton.Disable()
			p.statusLabel.SetText("Audio: " + name)
		})
	}()

	return nil
}

// Replay plays the current clip again
func (p *AudioPlayer) Replay() {
	p.onPlay()
}

func (p *AudioPlayer) onPlay() {
	if p.Source() == "" {
		return
	}

	p.load()
	go func() {
		if err := p.play(context.Background()); err != nil {
			fmt.Printf("Error al reproducir el audio: %v\n", err)
		}
	}()
}

func (p *AudioPlayer) onStop() {
	p.load()
	p.stopButton.Disable()
	p.statusLabel.SetText("Detenido")
}

// Element returns the player as the handler's audio element
func (p *AudioPlayer) Element() ui.AudioElement {
	return audioElement{p}
}

// audioElement adapts AudioPlayer to ui.AudioElement, moving widget updates
// onto the UI thread.
type audioElement struct {
	p *AudioPlayer
}

func (e audioElement) SetSource(url string) { e.p.setSource(url) }
func (e audioElement) Load()                { e.p.load() }
func (e audioElement) Show()                { fyne.Do(e.p.Show) }
func (e audioElement) Hide() {
	e.p.load()
	fyne.Do(e.p.Hide)
}

func (e audioElement) Play(ctx context.Context) error {
	return e.p.play(ctx)
}
