package ui

import "context"

// Block is one paragraph of the output area
type Block struct {
	Label string // rendered bold before the value; may be empty
	Value string
	Error bool // rendered as an error message
}

// View is the page surface the handler works on
type View interface {
	// Text returns the current value of the input field
	Text() string

	// Alert shows a blocking notification
	Alert(message string)

	// SetOutput replaces the content of the output area
	SetOutput(blocks []Block)

	// AppendOutput adds a block to the output area
	AppendOutput(block Block)
}

// AudioElement is the audio player of the page
type AudioElement interface {
	SetSource(url string)
	Load()
	Show()

	// Hide hides the element and stops its playback
	Hide()

	// Play starts playback and reports a failure to start. Once ctx is
	// done, Play must not start playback.
	Play(ctx context.Context) error
}
