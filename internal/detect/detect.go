// Package detect guesses the source language of a text so the translation
// prompt can name it.
package detect

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Detector recognises Japanese, Spanish and English
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector for the supported languages
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Japanese, lingua.Spanish, lingua.English).
		WithMinimumRelativeDistance(0.1).
		Build()

	return &Detector{detector: detector}
}

// Detect returns the ISO 639-1 code of the language of text, or "" when
// the detector is unsure.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
