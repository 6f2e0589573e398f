package memory

import (
	"context"
	"sort"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ChatRepository struct {
	store *Store
}

func NewChatRepository(store *Store) contract.ChatRepository {
	return &ChatRepository{store: store}
}

func (r *ChatRepository) ListByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Chat, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	chats := make([]*entity.Chat, 0)
	for _, item := range s.chats.Items() {
		chat := item.Object.(*entity.Chat)
		if chat.OwnedBy(userId) {
			chats = append(chats, chat.Clone())
		}
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (r *ChatRepository) FindByIdForUser(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*entity.Chat, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	x, found := s.chats.Get(id.String())
	if !found {
		return nil, nil
	}
	chat := x.(*entity.Chat)

	if owner == nil {
		if chat.UserId != nil {
			return nil, nil
		}
	} else if !chat.OwnedBy(*owner) {
		return nil, nil
	}
	return chat.Clone(), nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	chat.PrepareForCreate(time.Now())
	key := chat.Id.String()
	s.chats.Set(key, chat.Clone(), cache.NoExpiration)

	return s.commitLocked(func() {
		s.chats.Delete(key)
	})
}

func (r *ChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := chat.Id.String()
	x, found := s.chats.Get(key)
	if !found {
		return apperror.NotFound("chat not found")
	}
	previous := x.(*entity.Chat)

	// Identity fields stay as stored; only title and messages are replaced.
	next := previous.Clone()
	next.Title = chat.Title
	next.Messages = append([]entity.Message(nil), chat.Messages...)
	next.Touch(time.Now())
	s.chats.Set(key, next, cache.NoExpiration)

	if err := s.commitLocked(func() {
		s.chats.Set(key, previous, cache.NoExpiration)
	}); err != nil {
		return err
	}

	chat.UserId = next.Clone().UserId
	chat.CreatedAt = next.CreatedAt
	chat.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.String()
	x, found := s.chats.Get(key)
	if !found {
		return apperror.NotFound("chat not found")
	}
	s.chats.Delete(key)

	return s.commitLocked(func() {
		s.chats.Set(key, x, cache.NoExpiration)
	})
}

func (r *ChatRepository) DeleteAll(ctx context.Context) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.chats.Items()
	s.chats.Flush()

	return s.commitLocked(func() {
		for k, item := range previous {
			s.chats.Set(k, item.Object, cache.NoExpiration)
		}
	})
}
