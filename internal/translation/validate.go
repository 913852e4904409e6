package translation

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned for empty or whitespace-only input.
var ErrEmptyText = errors.New("text cannot be empty")

// ValidateText rejects empty and whitespace-only text.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}
