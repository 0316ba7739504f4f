package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface. State
// lives only for the life of the process; a restart clears everything.
type Storage struct {
	mu sync.RWMutex

	users         map[model.ConnID]*model.User
	usernameIndex map[string]model.ConnID // lowercased username -> connection
	joinOrder     []model.ConnID
	messages      []model.Message
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.ConnID]*model.User),
		usernameIndex: make(map[string]model.ConnID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[user.ID]; ok {
		// Re-saving under a new name frees the old one immediately
		delete(s.usernameIndex, strings.ToLower(prev.Username))
	} else {
		s.joinOrder = append(s.joinOrder, user.ID)
	}
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[strings.ToLower(user.Username)] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.ConnID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[strings.ToLower(username)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil
	}
	delete(s.users, id)
	delete(s.usernameIndex, strings.ToLower(user.Username))
	for i, joined := range s.joinOrder {
		if joined == id {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.joinOrder))
	for _, id := range s.joinOrder {
		if user, ok := s.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

// Message log operations

func (s *Storage) AppendMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *Storage) RecentMessages(ctx context.Context, n int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return []model.Message{}, nil
	}
	start := len(s.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Message, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out, nil
}

func (s *Storage) AllMessages(ctx context.Context) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}
