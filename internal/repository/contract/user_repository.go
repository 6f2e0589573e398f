package contract

import (
	"context"

	"chatbot-be/internal/entity"

	"github.com/google/uuid"
)

// UserRepository stores accounts. Finders return nil, nil when nothing matches.
type UserRepository interface {
	// Create fails with a CONFLICT error when the email is already registered.
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	DeleteAll(ctx context.Context) error
}
