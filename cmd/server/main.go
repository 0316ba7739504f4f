package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/chatrelay-go/internal/factory"
	"github.com/mcoot/chatrelay-go/internal/groq"
	"github.com/mcoot/chatrelay-go/internal/relay"
)

// defaultAllowedOrigins are the local development origins admitted when
// ALLOWED_ORIGINS is not set
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func main() {
	// Load .env if present; real environment variables take precedence
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// The generation API key is the one required secret
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		logger.Error("GROQ_API_KEY is not defined in environment variables")
		os.Exit(1)
	}

	groqCfg := groq.DefaultConfig()
	groqCfg.APIKey = apiKey
	if model := os.Getenv("GROQ_MODEL"); model != "" {
		groqCfg.Model = model
	}

	var generationTimeout time.Duration
	if raw := os.Getenv("GENERATION_TIMEOUT"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Error("invalid GENERATION_TIMEOUT", slog.String("value", raw))
			os.Exit(1)
		}
		generationTimeout = parsed
	}

	// Create application factory
	app, err := factory.New(factory.Config{
		Logger:            logger,
		GroqConfig:        &groqCfg,
		GenerationTimeout: generationTimeout,
	})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Wire the relay: hub fans out, router owns all state mutations
	hub := relay.NewHub(logger)
	router := relay.NewRouter(hub, app.Registry, app.History, app.Responder, logger)
	go router.Run(ctx)

	handler := relay.NewHandler(relay.RouterConfig{
		Logger:         logger,
		Hub:            hub,
		Router:         router,
		AllowedOrigins: allowedOrigins(),
	})

	serverConfig := relay.DefaultServerConfig()
	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			logger.Error("invalid PORT", slog.String("value", raw))
			os.Exit(1)
		}
		serverConfig.Port = port
	}

	server := relay.NewServer(handler, hub, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("relay started",
		slog.String("addr", server.Addr()),
		slog.String("model", groqCfg.Model))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("relay stopped")
}

// allowedOrigins reads the origin allow-list from the environment
func allowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return defaultAllowedOrigins
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
