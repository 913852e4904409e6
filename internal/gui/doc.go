// Package gui provides the Fyne desktop window of kotoba: a text entry, a
// result area showing hiragana, romanji, translation and pronunciation, an
// audio player for the spoken clip and a log of the session.
package gui
