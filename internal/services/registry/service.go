package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/storage"
)

// MaxUsernameLength is the maximum username length in characters, after trimming
const MaxUsernameLength = 20

// Service manages the connection registry: which connections have joined
// under which username. Admission is check-then-insert, so callers must
// serialize Join calls (the relay router does this on its event loop).
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new registry Service
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Join validates the requested username and admits the connection. The name
// is trimmed, must be 1-20 characters, and must not collide with a current
// user's name under case-insensitive comparison.
func (s *Service) Join(ctx context.Context, id model.ConnID, username string) (*model.User, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, model.ErrEmptyUsername
	}
	if utf8.RuneCountInString(trimmed) > MaxUsernameLength {
		return nil, model.ErrUsernameTooLong
	}

	_, err := s.storage.GetUserByUsername(ctx, trimmed)
	if err == nil {
		return nil, model.ErrUsernameTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, err
	}

	user := &model.User{ID: id, Username: trimmed}
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user joined",
		slog.String("conn_id", string(id)),
		slog.String("username", user.Username))

	return user, nil
}

// Leave removes the connection's user if present and returns it. Returns
// (nil, nil) if the connection never joined.
func (s *Service) Leave(ctx context.Context, id model.ConnID) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("user left",
		slog.String("conn_id", string(id)),
		slog.String("username", user.Username))

	return user, nil
}

// Lookup returns the user joined on the given connection
func (s *Service) Lookup(ctx context.Context, id model.ConnID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// List returns all current users in join order
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	return s.storage.ListUsers(ctx)
}
