package translation

import (
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "Eres un traductor experto en japonés. Devuelve únicamente JSON válido."

var hintNames = map[string]string{
	"ja": "japonés",
	"es": "español",
	"en": "inglés",
}

// buildPrompt returns the user prompt for text. The hint, when known, names
// the source language.
func buildPrompt(text, hint string) string {
	prompt := fmt.Sprintf("Convierte '%s' a Hiragana, Romanji y Español con pronunciación en Romanji. "+
		"Devuelve SOLO un JSON válido con las claves 'hiragana', 'romanji', 'traduccion', 'pronunciacion'.", text)

	if name, ok := hintNames[hint]; ok {
		prompt += fmt.Sprintf(" El texto original está en %s.", name)
	}
	return prompt
}

// ParseModelOutput decodes the JSON object a model returned. Code fences are
// stripped; single-quoted pseudo-JSON is accepted by swapping the quotes.
func ParseModelOutput(content string) (*Response, error) {
	content = stripCodeFence(strings.TrimSpace(content))
	if content == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrInvalidOutput)
	}

	var out Response
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		if err2 := json.Unmarshal([]byte(strings.ReplaceAll(content, "'", "\"")), &out); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}

	// Models are not allowed to speak for the server.
	out.Error = ""
	out.AudioURL = ""

	if out.Empty() {
		return nil, fmt.Errorf("%w: no translation fields", ErrInvalidOutput)
	}

	return &out, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
