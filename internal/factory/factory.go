package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/chatrelay-go/internal/dependencies/clock"
	"github.com/mcoot/chatrelay-go/internal/groq"
	"github.com/mcoot/chatrelay-go/internal/services/history"
	"github.com/mcoot/chatrelay-go/internal/services/registry"
	"github.com/mcoot/chatrelay-go/internal/services/responder"
	"github.com/mcoot/chatrelay-go/internal/storage"
	"github.com/mcoot/chatrelay-go/internal/storage/memory"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	Registry  *registry.Service
	History   *history.Service
	Responder *responder.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Generator overrides the text-generation backend (optional, used in
	// tests). If nil, a Groq client is built from GroqConfig.
	Generator responder.Generator
	// GroqConfig holds Groq API settings (required unless Generator is set)
	GroqConfig *groq.Config
	// GenerationTimeout bounds a single generation call (optional)
	// If zero, defaults to responder.DefaultTimeout
	GenerationTimeout time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	generator := cfg.Generator
	if generator == nil {
		if cfg.GroqConfig == nil {
			return nil, errors.New("GroqConfig required when no Generator is provided")
		}
		client, err := groq.New(*cfg.GroqConfig)
		if err != nil {
			return nil, err
		}
		generator = client
	}

	store := memory.New()
	clk := clock.New()

	return &App{
		Storage:   store,
		Clock:     clk,
		Registry:  registry.New(store, logger),
		History:   history.New(store, clk, logger),
		Responder: responder.New(generator, cfg.GenerationTimeout, logger),
	}, nil
}
