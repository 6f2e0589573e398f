package memory

import (
	"context"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) contract.UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emailToUser[user.Email]; taken {
		return apperror.Conflict("email already registered")
	}

	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt

	key := user.Id.String()
	cp := *user
	s.users.Set(key, &cp, cache.NoExpiration)
	s.emailToUser[user.Email] = key

	return s.commitLocked(func() {
		s.users.Delete(key)
		delete(s.emailToUser, user.Email)
	})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.emailToUser[email]
	if !ok {
		return nil, nil
	}
	return r.getLocked(key), nil
}

func (r *UserRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return r.getLocked(id.String()), nil
}

func (r *UserRepository) DeleteAll(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	previousUsers := s.users.Items()
	previousIndex := s.emailToUser

	s.users.Flush()
	s.emailToUser = make(map[string]string)

	return s.commitLocked(func() {
		for k, item := range previousUsers {
			s.users.Set(k, item.Object, cache.NoExpiration)
		}
		s.emailToUser = previousIndex
	})
}

func (r *UserRepository) getLocked(key string) *entity.User {
	x, found := r.store.users.Get(key)
	if !found {
		return nil
	}
	cp := *x.(*entity.User)
	return &cp
}
