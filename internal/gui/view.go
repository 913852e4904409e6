package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"codeberg.org/snonux/kotoba/internal/ui"
)

// The Application is the handler's view. The handler runs off the UI thread,
// so every method hops onto it.

// Text returns the value of the input entry
func (a *Application) Text() string {
	var text string
	fyne.DoAndWait(func() {
		text = a.input.Text
	})
	return text
}

// Alert shows a modal notification
func (a *Application) Alert(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("Aviso", message, a.window)
	})
}

// SetOutput replaces the result area
func (a *Application) SetOutput(blocks []ui.Block) {
	fyne.Do(func() {
		a.output.SetBlocks(blocks)
	})
}

// AppendOutput adds a paragraph to the result area
func (a *Application) AppendOutput(block ui.Block) {
	fyne.Do(func() {
		a.output.AppendBlock(block)
	})
}
