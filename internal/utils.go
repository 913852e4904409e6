package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// ClipFileName names the file of a clip after its id. The id is sanitised
// and the extension defaults to mp3.
func ClipFileName(id, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "mp3"
	}
	return SanitizeFilename(id) + "." + ext
}

// SpeechKey hashes the inputs of a speech request into a hex cache key.
// Parts are separated so that ("ab", "c") and ("a", "bc") differ.
func SpeechKey(parts ...string) string {
	h := md5.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SanitizeFilename creates a safe filename from a string. Letters of any
// script (kana, kanji, latin) and digits are kept.
func SanitizeFilename(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	return string(result)
}

func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
