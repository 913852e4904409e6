package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/unicode/norm"

	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/translation"
)

// Error messages of the endpoint
const (
	MsgInvalidJSON   = "JSON inválido"
	MsgEmptyText     = "Texto vacío"
	MsgInvalidOutput = "La respuesta del traductor no es un JSON válido"
	MsgUnavailable   = "El servicio de traducción no está disponible. Inténtalo más tarde."
	MsgBackendFailed = "Error al contactar el servicio de traducción"
	MsgClipNotFound  = "Audio no encontrado"
	MsgClipExpired   = "El archivo de audio ha expirado"
)

func (s *Server) translate(c *fiber.Ctx) error {
	var req translation.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, MsgInvalidJSON)
	}

	text := norm.NFC.String(strings.TrimSpace(req.Text))
	if err := translation.ValidateText(text); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, MsgEmptyText)
	}

	ctx := c.UserContext()

	hint := ""
	if s.deps.Detector != nil {
		hint = s.deps.Detector.Detect(text)
	}

	resp, err := s.deps.Translator.Translate(ctx, text, hint)
	if err != nil {
		log.Printf("Translation of %q failed: %v", text, err)
		switch {
		case errors.Is(err, translation.ErrInvalidOutput):
			return fiber.NewError(fiber.StatusBadGateway, MsgInvalidOutput)
		case errors.Is(err, translation.ErrBackendUnavailable):
			return fiber.NewError(fiber.StatusServiceUnavailable, MsgUnavailable)
		default:
			return fiber.NewError(fiber.StatusBadGateway, MsgBackendFailed)
		}
	}

	out := translation.Response{
		Hiragana:      resp.Hiragana,
		Romanji:       resp.Romanji,
		Translation:   resp.Translation,
		Pronunciation: resp.Pronunciation,
	}

	if s.deps.Speech != nil && hasKana(out.Hiragana) {
		url, err := s.synthesize(ctx, out.Hiragana)
		if err != nil {
			// The translation is still useful without audio
			log.Printf("Speech for %q failed: %v", out.Hiragana, err)
		} else {
			out.AudioURL = url
		}
	}

	if s.deps.History != nil {
		if _, err := s.deps.History.Record(ctx, text, hint, s.deps.Translator.Name(), &out); err != nil {
			log.Printf("Failed to record history: %v", err)
		}
	}

	return c.JSON(out)
}

// synthesize writes a clip for text into the clip store and returns its URL
func (s *Server) synthesize(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.SpeechLimit)
	defer cancel()

	id, path := s.deps.Clips.Reserve(s.config.AudioFormat)
	if err := s.deps.Speech.GenerateAudio(ctx, text, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("%s: %w", s.deps.Speech.Name(), err)
	}

	if _, err := s.deps.Clips.Commit(id, path, text); err != nil {
		return "", err
	}

	return strings.TrimRight(s.config.PublicURL, "/") + "/audio/" + id, nil
}

func (s *Server) serveClip(c *fiber.Ctx) error {
	if s.deps.Clips == nil {
		return fiber.NewError(fiber.StatusNotFound, MsgClipNotFound)
	}

	clip, err := s.deps.Clips.Get(c.Params("id"))
	switch {
	case errors.Is(err, audio.ErrClipExpired):
		return fiber.NewError(fiber.StatusGone, MsgClipExpired)
	case err != nil:
		return fiber.NewError(fiber.StatusNotFound, MsgClipNotFound)
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendFile(clip.Path)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"backend": s.deps.Translator.Name(),
	})
}

func hasKana(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			return true
		}
	}
	return false
}
