package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"codeberg.org/snonux/kotoba/internal/translation"
)

// Messages shown to the user
const (
	MsgEmptyInput   = "Por favor, ingresa un texto."
	MsgAudioExpired = "El archivo de audio ha expirado. Por favor, realiza una nueva búsqueda."
	MsgUnreachable  = "no se pudo contactar el servicio de traducción"
)

// ErrStale is returned by Submit when a newer submission was issued before
// this one completed; its result was discarded.
var ErrStale = errors.New("response superseded by a newer request")

// Client is the translation endpoint as seen by the handler
type Client interface {
	Translate(ctx context.Context, text string) (*translation.Response, error)
}

// Handler performs one translation round trip per Submit
type Handler struct {
	client Client
	view   View
	audio  AudioElement // nil without audio support
	debug  io.Writer

	// Serialises rendering and guards seq and stop.
	mu   sync.Mutex
	seq  uint64
	stop context.CancelFunc // cancels the playback of the latest submission
}

// NewHandler creates a handler. A nil audio element disables audio support.
func NewHandler(client Client, view View, audio AudioElement) *Handler {
	return &Handler{
		client: client,
		view:   view,
		audio:  audio,
	}
}

// SetDebug sets a writer that receives every decoded response
func (h *Handler) SetDebug(w io.Writer) {
	h.debug = w
}

// AudioEnabled reports whether the handler drives an audio element
func (h *Handler) AudioEnabled() bool {
	return h.audio != nil
}

// Submit reads the input, translates it and renders the result. Concurrent
// calls are allowed; only the most recently issued one renders.
func (h *Handler) Submit(ctx context.Context) error {
	text := h.view.Text()
	if err := translation.ValidateText(text); err != nil {
		h.view.Alert(MsgEmptyInput)
		return err
	}

	id, playCtx := h.next(ctx)

	resp, err := h.client.Translate(ctx, text)

	h.mu.Lock()
	defer h.mu.Unlock()

	if id != h.seq {
		return ErrStale
	}

	if err != nil {
		h.view.SetOutput([]Block{{Label: "Error", Value: fmt.Sprintf("%s (%v)", MsgUnreachable, err), Error: true}})
		h.hideAudio()
		return err
	}

	if h.debug != nil {
		fmt.Fprintf(h.debug, "Respuesta de la API: %+v\n", *resp)
	}

	if resp.Failed() {
		h.view.SetOutput([]Block{{Label: "Error", Value: resp.Error, Error: true}})
		h.hideAudio()
		return nil
	}

	h.view.SetOutput(ResultBlocks(resp))

	if h.audio == nil {
		return nil
	}

	if !resp.HasAudio() {
		h.audio.Hide()
		return nil
	}

	h.audio.SetSource(resp.AudioURL)
	h.audio.Load()
	h.audio.Show()

	// Playback start may take a while (the clip is fetched); a newer
	// submission must be able to render meanwhile. It cancels playCtx, so
	// this clip never starts once superseded.
	h.mu.Unlock()
	playErr := h.audio.Play(playCtx)
	h.mu.Lock()

	if id != h.seq {
		return ErrStale
	}
	if playErr != nil {
		fmt.Fprintf(debugOrDiscard(h.debug), "Error al reproducir el audio: %v\n", playErr)
		h.view.AppendOutput(Block{Value: MsgAudioExpired, Error: true})
	}

	return nil
}

// next issues a sequence number and a playback context for a submission,
// cancelling the playback context of the previous one.
func (h *Handler) next(ctx context.Context) (uint64, context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stop != nil {
		h.stop()
	}
	playCtx, stop := context.WithCancel(ctx)
	h.stop = stop
	h.seq++
	return h.seq, playCtx
}

func (h *Handler) hideAudio() {
	if h.audio != nil {
		h.audio.Hide()
	}
}

func debugOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// ResultBlocks returns the four labelled paragraphs of a successful response
func ResultBlocks(resp *translation.Response) []Block {
	return []Block{
		{Label: "Hiragana", Value: resp.Hiragana},
		{Label: "Romanji", Value: resp.Romanji},
		{Label: "Traducción", Value: resp.Translation},
		{Label: "Pronunciación", Value: resp.Pronunciation},
	}
}
