package ui

import (
	"fmt"
	"io"
	"sync"
)

// Output formats of WriterView
const (
	FormatText = "text"
	FormatHTML = "html"
)

// WriterView is a View for the terminal. The input is fixed at creation;
// output blocks are written to out as they are rendered and alerts go to
// errOut.
type WriterView struct {
	input  string
	out    io.Writer
	errOut io.Writer
	format string

	mu     sync.Mutex
	blocks []Block
}

// NewWriterView creates a terminal view for one input text
func NewWriterView(input string, out, errOut io.Writer, format string) (*WriterView, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatHTML:
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}

	return &WriterView{
		input:  input,
		out:    out,
		errOut: errOut,
		format: format,
	}, nil
}

// Text returns the input given at creation
func (v *WriterView) Text() string {
	return v.input
}

// Alert writes the notification to the error output
func (v *WriterView) Alert(message string) {
	fmt.Fprintln(v.errOut, message)
}

// SetOutput writes the blocks
func (v *WriterView) SetOutput(blocks []Block) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.blocks = append([]Block(nil), blocks...)
	v.write(blocks)
}

// AppendOutput writes one more block
func (v *WriterView) AppendOutput(block Block) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.blocks = append(v.blocks, block)
	v.write([]Block{block})
}

// Blocks returns everything rendered so far
func (v *WriterView) Blocks() []Block {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Block(nil), v.blocks...)
}

func (v *WriterView) write(blocks []Block) {
	if v.format == FormatHTML {
		io.WriteString(v.out, RenderHTML(blocks))
		return
	}
	io.WriteString(v.out, RenderText(blocks))
}
