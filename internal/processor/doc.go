// Package processor wires the configured components together for each
// mode of kotoba: one translation in the terminal, the GUI, the translation
// endpoint and the history listing.
package processor
