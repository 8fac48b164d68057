package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/varun-cu-unv/MedAssist/drugdb"
)

// Server wires the HTTP routes to their collaborators. Store and fda may
// be nil; the drug endpoint then answers from the embedded catalog only.
type Server struct {
	cfg   *Config
	log   zerolog.Logger
	stt   Transcriber
	store *drugdb.Store
	fda   *drugdb.FDAClient
	app   *fiber.App
}

func New(cfg *Config, logger zerolog.Logger, stt Transcriber, store *drugdb.Store) *Server {
	s := &Server{
		cfg:   cfg,
		log:   logger,
		stt:   stt,
		store: store,
	}
	if cfg.OpenFDA {
		s.fda = drugdb.NewFDAClient(cfg.OpenFDAURL)
	}

	app := fiber.New(fiber.Config{
		AppName:               "medassistd",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		// Above fiber's default so oversized uploads reach the voice
		// handler's own size check and get a JSON answer, not a bare 413.
		BodyLimit: maxAudioBytes * 2,
	})
	app.Use(recover.New())
	app.Use(s.logRequests)

	app.Get("/healthz", s.handleHealth)
	app.Post("/process-voice", s.handleVoice)
	app.Post("/get-drug-info", s.handleDrugInfo)

	s.app = app
	return s
}

// App exposes the fiber app for Listen and for handler tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	addr := ":" + s.cfg.Port
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
