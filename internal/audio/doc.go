// Package audio synthesises spoken Japanese for translation results, keeps
// the synthesised clips for a limited time, and plays clips back on the
// local machine.
package audio
