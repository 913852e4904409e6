package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/kotoba/internal/ui"
)

// OutputArea is the result area ("resultado"): one paragraph per block,
// labels in bold and errors in the error colour.
type OutputArea struct {
	widget.BaseWidget

	text   *widget.RichText
	scroll *container.Scroll

	mu     sync.Mutex
	blocks []ui.Block
}

// NewOutputArea creates an empty output area
func NewOutputArea() *OutputArea {
	o := &OutputArea{}

	o.text = widget.NewRichText()
	o.text.Wrapping = fyne.TextWrapWord

	o.scroll = container.NewVScroll(o.text)
	o.scroll.SetMinSize(fyne.NewSize(0, 200))

	o.ExtendBaseWidget(o)
	return o
}

// CreateRenderer implements fyne.Widget
func (o *OutputArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(o.scroll)
}

// SetBlocks replaces the content. Must run on the UI thread.
func (o *OutputArea) SetBlocks(blocks []ui.Block) {
	o.mu.Lock()
	o.blocks = append([]ui.Block(nil), blocks...)
	o.mu.Unlock()

	o.render()
}

// AppendBlock adds a paragraph. Must run on the UI thread.
func (o *OutputArea) AppendBlock(block ui.Block) {
	o.mu.Lock()
	o.blocks = append(o.blocks, block)
	o.mu.Unlock()

	o.render()
}

// Blocks returns the displayed paragraphs
func (o *OutputArea) Blocks() []ui.Block {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]ui.Block(nil), o.blocks...)
}

// Clear empties the area
func (o *OutputArea) Clear() {
	o.SetBlocks(nil)
}

func (o *OutputArea) render() {
	o.text.Segments = segments(o.Blocks())
	o.text.Refresh()
	o.scroll.ScrollToTop()
}

// segments turns blocks into rich text; an inline label segment followed by
// a block-level value segment forms one paragraph.
func segments(blocks []ui.Block) []widget.RichTextSegment {
	var segs []widget.RichTextSegment

	for _, b := range blocks {
		colour := theme.ColorNameForeground
		if b.Error {
			colour = theme.ColorNameError
		}

		if b.Label != "" {
			segs = append(segs, &widget.TextSegment{
				Text: b.Label + ": ",
				Style: widget.RichTextStyle{
					Inline:    true,
					ColorName: colour,
					TextStyle: fyne.TextStyle{Bold: true},
				},
			})
		}

		segs = append(segs, &widget.TextSegment{
			Text: b.Value,
			Style: widget.RichTextStyle{
				ColorName: colour,
			},
		})
	}

	return segs
}
