// Package ui implements the translation request handler: it reads the input
// field of a view, posts the text to the translation endpoint and renders
// the result (and optionally plays its audio) back into the view. The view
// and the audio element are injected so the same handler drives the
// terminal, the HTML fragment output and the desktop window.
package ui
