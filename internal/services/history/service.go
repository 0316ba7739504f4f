package history

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mcoot/chatrelay-go/internal/dependencies/clock"
	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/storage"
)

// MaxMessageLength is the maximum human message length in characters, after trimming
const MaxMessageLength = 1000

// Service manages the message log. Messages are constructed here so that IDs
// are collision-free and timestamps come from a single clock, then appended
// to storage in call order.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new history Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "history")),
	}
}

// AppendUserMessage validates, constructs, and appends a human-authored
// message. Empty text (after trimming) returns ErrEmptyMessage; callers drop
// those silently. Oversized text returns ErrMessageTooLong.
func (s *Service) AppendUserMessage(ctx context.Context, username, text string) (*model.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return nil, model.ErrMessageTooLong
	}

	msg := &model.Message{
		ID:        "msg-" + uuid.NewString(),
		Username:  username,
		Text:      trimmed,
		Timestamp: s.clock.Now().UnixMilli(),
		IsAI:      false,
	}
	if err := s.storage.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// AppendAIMessage constructs and appends a synthetic reply under the fixed
// AI author name. AI output is treated as opaque text and not length-checked.
func (s *Service) AppendAIMessage(ctx context.Context, text string) (*model.Message, error) {
	msg := &model.Message{
		ID:        "ai-" + uuid.NewString(),
		Username:  model.AIAuthorName,
		Text:      text,
		Timestamp: s.clock.Now().UnixMilli(),
		IsAI:      true,
	}
	if err := s.storage.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns the last n messages in log order
func (s *Service) Recent(ctx context.Context, n int) ([]model.Message, error) {
	return s.storage.RecentMessages(ctx, n)
}

// All returns the full message log, used to seed newly joined clients
func (s *Service) All(ctx context.Context) ([]model.Message, error) {
	return s.storage.AllMessages(ctx)
}
