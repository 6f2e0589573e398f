package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_ConflictOnDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@b.com", PasswordHash: "h"}))
	err := repo.Create(ctx, &entity.User{Email: "a@b.com", PasswordHash: "h"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	user := &entity.User{Email: "a@b.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindById(ctx, user.Id)
	require.NoError(t, err)
	found.Email = "mutated@b.com"

	again, _ := repo.FindByEmail(ctx, "a@b.com")
	require.NotNil(t, again)
	assert.Equal(t, "a@b.com", again.Email)
}

func TestChatRepository_SharedStoreAcrossRepositories(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	owner := uuid.New()

	chat := &entity.Chat{UserId: &owner}
	require.NoError(t, NewChatRepository(store).Create(ctx, chat))

	found, err := NewChatRepository(store).FindByIdForUser(ctx, chat.Id, &owner)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "New Chat", found.Title)
}

func TestChatRepository_UpdateKeepsIdentityAndRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(NewStore())
	owner := uuid.New()

	chat := &entity.Chat{UserId: &owner}
	require.NoError(t, repo.Create(ctx, chat))
	createdAt := chat.CreatedAt

	time.Sleep(2 * time.Millisecond)
	update := &entity.Chat{
		Id:       chat.Id,
		Title:    "renamed",
		Messages: []entity.Message{{Role: entity.MessageRoleUser, Content: "hi"}},
	}
	require.NoError(t, repo.Update(ctx, update))
	assert.Equal(t, createdAt, update.CreatedAt)
	assert.True(t, update.UpdatedAt.After(createdAt))

	found, _ := repo.FindByIdForUser(ctx, chat.Id, &owner)
	require.NotNil(t, found)
	assert.Equal(t, "renamed", found.Title)
	assert.Len(t, found.Messages, 1)
}

func TestChatRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(NewStore())

	assert.True(t, apperror.Is(repo.Update(ctx, &entity.Chat{Id: uuid.New()}), apperror.KindNotFound))
	assert.True(t, apperror.Is(repo.Delete(ctx, uuid.New()), apperror.KindNotFound))
}

func TestChatRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewChatRepository(NewStore())
	owner := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &entity.Chat{UserId: &owner})
		}()
	}
	wg.Wait()

	list, err := repo.ListByUser(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestPersistentStore_RollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	fail := false
	var persisted *Snapshot
	store := NewPersistentStore(nil, func(snapshot *Snapshot) error {
		if fail {
			return errors.New("disk full")
		}
		persisted = snapshot
		return nil
	})
	repo := NewChatRepository(store)
	owner := uuid.New()

	require.NoError(t, repo.Create(ctx, &entity.Chat{UserId: &owner}))
	require.NotNil(t, persisted)
	assert.Len(t, persisted.Chats, 1)

	fail = true
	err := repo.Create(ctx, &entity.Chat{UserId: &owner})
	assert.Error(t, err)

	list, _ := repo.ListByUser(ctx, owner)
	assert.Len(t, list, 1)
}

func TestSessionRepository_SaveAndGet(t *testing.T) {
	repo := NewSessionRepository(time.Minute)

	repo.Save(&AnonymousSession{ID: "s1", Messages: []entity.Message{{Role: entity.MessageRoleUser, Content: "hi"}}})

	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Len(t, got.Messages, 1)

	repo.Delete("s1")
	_, ok = repo.Get("s1")
	assert.False(t, ok)
}
