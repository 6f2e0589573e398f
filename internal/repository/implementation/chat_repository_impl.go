package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot-be/internal/entity"
	"chatbot-be/internal/mapper"
	"chatbot-be/internal/model"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/repository/contract"
	"chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRepositoryImpl) ListByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Chat, error) {
	var chats []*model.Chat
	query := specification.Apply(r.db.WithContext(ctx),
		specification.UserOwnedBy{UserID: userId},
		specification.RecentlyUpdatedFirst,
	)
	if err := query.Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return r.mapper.ToEntities(chats), nil
}

func (r *ChatRepositoryImpl) FindByIdForUser(ctx context.Context, id uuid.UUID, owner *uuid.UUID) (*entity.Chat, error) {
	var chat model.Chat
	query := specification.Apply(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.OwnedByOrOwnerless(owner),
	)
	if err := query.First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return r.mapper.ToEntity(&chat), nil
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	chat.PrepareForCreate(time.Now())

	modelChat := r.mapper.ToModel(chat)
	if err := r.db.WithContext(ctx).Create(modelChat).Error; err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	*chat = *r.mapper.ToEntity(modelChat)
	return nil
}

func (r *ChatRepositoryImpl) Update(ctx context.Context, chat *entity.Chat) error {
	chat.Touch(time.Now())
	modelChat := r.mapper.ToModel(chat)

	res := r.db.WithContext(ctx).
		Model(&model.Chat{}).
		Where("id = ?", chat.Id).
		Updates(map[string]interface{}{
			"title":      modelChat.Title,
			"messages":   modelChat.Messages,
			"updated_at": modelChat.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update chat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("chat not found")
	}
	return nil
}

func (r *ChatRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Chat{})
	if res.Error != nil {
		return fmt.Errorf("delete chat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("chat not found")
	}
	return nil
}

func (r *ChatRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Chat{}).Error
}
