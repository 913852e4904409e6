package ui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"

	"codeberg.org/snonux/kotoba/internal/audio"
)

// PlayerAudio is an AudioElement for the terminal, backed by the local
// audio player. Relative sources are resolved against the server URL.
type PlayerAudio struct {
	player *audio.Player
	base   string
	out    io.Writer

	mu       sync.Mutex
	source   string
	visible  bool
	playback *audio.Playback
}

// NewPlayerAudio creates an audio element that reports its state on out
func NewPlayerAudio(player *audio.Player, serverURL string, out io.Writer) (*PlayerAudio, error) {
	if _, err := url.Parse(serverURL); err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	return &PlayerAudio{player: player, base: serverURL, out: out}, nil
}

// SetSource sets the clip URL
func (a *PlayerAudio) SetSource(source string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = ResolveURL(a.base, source)
}

// ResolveURL resolves a clip URL, which the server may send relative to
// itself, against the server base URL.
func ResolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

// Load stops whatever is currently playing
func (a *PlayerAudio) Load() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *PlayerAudio) stopLocked() {
	if a.playback != nil {
		a.playback.Stop()
		a.playback = nil
	}
}

// Show prints the clip URL
func (a *PlayerAudio) Show() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visible = true
	fmt.Fprintf(a.out, "♪ %s\n", a.source)
}

// Hide marks the element hidden and stops playback
func (a *PlayerAudio) Hide() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visible = false
	a.stopLocked()
}

// Visible reports whether the element is shown
func (a *PlayerAudio) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

// Play fetches the clip and starts playback. The download is removed when
// playback ends.
func (a *PlayerAudio) Play(ctx context.Context) error {
	a.mu.Lock()
	source := a.source
	a.mu.Unlock()

	if source == "" {
		return fmt.Errorf("no audio source set")
	}

	file, err := a.player.Fetch(ctx, source)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		os.Remove(file)
		return err
	}

	pb, err := a.player.StartTemp(file)
	if err != nil {
		return err
	}
	a.stopLocked()
	a.playback = pb
	return nil
}

// Wait blocks until the current playback ends or ctx is done
func (a *PlayerAudio) Wait(ctx context.Context) error {
	a.mu.Lock()
	pb := a.playback
	a.mu.Unlock()

	if pb == nil {
		return nil
	}

	select {
	case <-pb.Done():
		return pb.Err()
	case <-ctx.Done():
		pb.Stop()
		return ctx.Err()
	}
}
