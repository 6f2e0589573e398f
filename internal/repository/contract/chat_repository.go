package contract

import (
	"context"

	"chatbot-be/internal/entity"

	"github.com/google/uuid"
)

type ChatRepository interface {
	// ListByUser returns the user's chats, most recently updated first.
	ListByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Chat, error)

	// FindByIdForUser returns nil, nil when the chat is missing or owned by
	// someone else. A nil owner only matches ownerless chats.
	FindByIdForUser(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*entity.Chat, error)

	Create(ctx context.Context, chat *entity.Chat) error

	// Update replaces title and messages and refreshes UpdatedAt.
	// Unknown ids fail with a NOT_FOUND error.
	Update(ctx context.Context, chat *entity.Chat) error

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}
