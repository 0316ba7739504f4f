package responder

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mcoot/chatrelay-go/internal/model"
)

const (
	// ContextSize is the maximum number of prior messages supplied to the
	// generation call for conversational continuity
	ContextSize = 5

	// DefaultTimeout bounds a single generation call. An exceeded timeout is
	// treated the same as a call failure.
	DefaultTimeout = 30 * time.Second

	// FallbackText is sent as the AI reply when the generation call fails or
	// times out, so a mention never goes silently unanswered
	FallbackText = "Désolé, je rencontre des difficultés techniques pour répondre. Réessayez plus tard."
)

// mentionPattern matches the fixed set of bot mention tokens in any casing
var mentionPattern = regexp.MustCompile(`(?i)@chatbot|@ai|@assistant`)

// Mentioned reports whether text mentions the bot
func Mentioned(text string) bool {
	return mentionPattern.MatchString(text)
}

// CleanMessage strips mention tokens from the triggering text so the model
// doesn't see its own mention echoed back
func CleanMessage(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// Turn is one prior conversation message supplied to the generator as context
type Turn struct {
	Author string
	Text   string
}

// Generator is the external text-generation capability: it takes the prior
// conversation turns and the cleaned user message and returns generated text
// or fails.
type Generator interface {
	Generate(ctx context.Context, turns []Turn, userMessage string) (string, error)
}

// Service produces AI replies to bot mentions. Failures never escape: every
// mention yields either generated text or the fixed fallback.
type Service struct {
	generator Generator
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a new responder Service. A timeout of zero uses DefaultTimeout.
func New(generator Generator, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		generator: generator,
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "responder")),
	}
}

// Reply produces the AI response text for a triggering message. history is
// the log slice preceding the trigger; only the last ContextSize entries are
// supplied to the generator. The trigger text is cleaned of mention tokens
// before it becomes the user turn.
func (s *Service) Reply(ctx context.Context, history []model.Message, trigger string) string {
	if len(history) > ContextSize {
		history = history[len(history)-ContextSize:]
	}
	turns := make([]Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, Turn{Author: msg.Username, Text: msg.Text})
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(genCtx, turns, CleanMessage(trigger))
	if err != nil {
		s.logger.Warn("generation failed, using fallback",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)))
		return FallbackText
	}

	s.logger.Info("generated reply",
		slog.Int("context_turns", len(turns)),
		slog.Duration("elapsed", time.Since(start)))
	return text
}
