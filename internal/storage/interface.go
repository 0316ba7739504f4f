package storage

import (
	"context"

	"github.com/mcoot/chatrelay-go/internal/model"
)

// Storage defines the interface for the relay's shared state: the connection
// registry and the append-only message log. Implementations must be safe for
// concurrent use, though the relay router is the single logical writer.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.ConnID) (*model.User, error)
	// GetUserByUsername matches case-insensitively.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	DeleteUser(ctx context.Context, id model.ConnID) error
	// ListUsers returns users in join order.
	ListUsers(ctx context.Context) ([]model.User, error)

	// Message log operations. The log is append-only: messages are never
	// reordered or removed.
	AppendMessage(ctx context.Context, msg *model.Message) error
	RecentMessages(ctx context.Context, n int) ([]model.Message, error)
	AllMessages(ctx context.Context) ([]model.Message, error)
}
