package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"codeberg.org/snonux/kotoba/internal"
	"codeberg.org/snonux/kotoba/internal/audio"
	"codeberg.org/snonux/kotoba/internal/translation"
)

// DefaultListen is the listen address used when none is configured
const DefaultListen = ":5000"

// Config holds the server settings
type Config struct {
	Listen      string        // listen address; PORT overrides the default
	PublicURL   string        // prefix of audio URLs; empty gives relative URLs
	AudioFormat string        // clip extension, mp3 by default
	SpeechLimit time.Duration // upper bound for synthesising one clip
	AccessLog   bool
}

// Detector guesses the language of a text
type Detector interface {
	Detect(text string) string
}

// Recorder keeps a log of answered translations
type Recorder interface {
	Record(ctx context.Context, text, language, backend string, resp *translation.Response) (string, error)
}

// Deps are the collaborators of the server. Only Translator is required.
type Deps struct {
	Translator translation.Translator
	Speech     audio.Provider
	Clips      *audio.Store
	Detector   Detector
	History    Recorder
}

// Server is the translation endpoint
type Server struct {
	config *Config
	deps   Deps
	app    *fiber.App
}

// New creates a server and registers its routes
func New(config *Config, deps Deps) (*Server, error) {
	if deps.Translator == nil {
		return nil, errors.New("a translation backend is required")
	}
	if deps.Speech != nil && deps.Clips == nil {
		return nil, errors.New("speech requires an audio clip store")
	}

	if config == nil {
		config = &Config{}
	}
	if config.Listen == "" {
		config.Listen = listenAddr()
	}
	if config.AudioFormat == "" {
		config.AudioFormat = "mp3"
	}
	if config.SpeechLimit == 0 {
		config.SpeechLimit = 60 * time.Second
	}

	s := &Server{
		config: config,
		deps:   deps,
		app: fiber.New(fiber.Config{
			AppName:               "kotoba " + internal.Version,
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	if config.AccessLog {
		s.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	s.app.Post(translation.EndpointPath, s.translate)
	s.app.Get("/audio/:id", s.serveClip)
	s.app.Get("/healthz", s.health)

	return s, nil
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.config.Listen
}

// Listen serves until ctx is cancelled or the listener fails
func (s *Server) Listen(ctx context.Context) error {
	if s.deps.Clips != nil {
		go s.deps.Clips.Run(ctx, time.Minute)
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s (backend %s)", s.config.Listen, s.deps.Translator.Name())
		errc <- s.app.Listen(s.config.Listen)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	if err := s.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func listenAddr() string {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}
	return DefaultListen
}

// errorHandler answers every error in the {"error": "..."} shape of the
// endpoint.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Error interno del servidor"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(translation.Response{Error: message})
}
