package service

import (
	"context"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/pkg/validation"
	"chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IChatService interface {
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ChatResponse, error)
	Get(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ChatResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	Update(ctx context.Context, userId uuid.UUID, chatId string, req *dto.UpdateChatRequest) (*dto.ChatResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, chatId string) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

func (s *chatService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ChatResponse, error) {
	chats, err := s.uowFactory.NewUnitOfWork(ctx).ChatRepository().ListByUser(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to load chats", err)
	}

	res := make([]*dto.ChatResponse, len(chats))
	for i, chat := range chats {
		res[i] = toChatResponse(chat)
	}
	return res, nil
}

func (s *chatService) Get(ctx context.Context, userId uuid.UUID, chatId string) (*dto.ChatResponse, error) {
	chat, err := s.findOwned(ctx, s.uowFactory.NewUnitOfWork(ctx), userId, chatId)
	if err != nil {
		return nil, err
	}
	return toChatResponse(chat), nil
}

func (s *chatService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	messages := toMessageEntities(req.Messages)
	title := req.Title
	if title == "" && len(messages) > 0 {
		title = DeriveTitle(messages)
	}

	owner := userId
	chat := &entity.Chat{
		UserId:   &owner,
		Title:    title,
		Messages: messages,
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).ChatRepository().Create(ctx, chat); err != nil {
		return nil, apperror.Internal("failed to create chat", err)
	}

	s.publisher.PublishChatCreated(ctx, chat)
	return toChatResponse(chat), nil
}

func (s *chatService) Update(ctx context.Context, userId uuid.UUID, chatId string, req *dto.UpdateChatRequest) (*dto.ChatResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := s.findOwned(ctx, uow, userId, chatId)
	if err != nil {
		return nil, err
	}

	chat.Messages = toMessageEntities(req.Messages)
	if req.Title != "" {
		chat.Title = req.Title
	} else {
		chat.Title = titleAfterUpdate(chat.Title, chat.Messages)
	}

	if err := uow.ChatRepository().Update(ctx, chat); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, apperror.Internal("failed to update chat", err)
	}
	return toChatResponse(chat), nil
}

func (s *chatService) Delete(ctx context.Context, userId uuid.UUID, chatId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := s.findOwned(ctx, uow, userId, chatId)
	if err != nil {
		return err
	}

	if err := uow.ChatRepository().Delete(ctx, chat.Id); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return err
		}
		return apperror.Internal("failed to delete chat", err)
	}

	s.publisher.PublishChatDeleted(ctx, chat.Id, userId)
	return nil
}

// findOwned treats malformed ids like unknown ones.
func (s *chatService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, chatId string) (*entity.Chat, error) {
	id, err := uuid.Parse(chatId)
	if err != nil {
		return nil, apperror.NotFound("chat not found")
	}

	chat, err := uow.ChatRepository().FindByIdForUser(ctx, id, &userId)
	if err != nil {
		return nil, apperror.Internal("failed to load chat", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("chat not found")
	}
	return chat, nil
}

func toMessageEntities(messages []dto.MessageDto) []entity.Message {
	res := make([]entity.Message, len(messages))
	for i, m := range messages {
		res[i] = entity.Message{Role: entity.MessageRole(m.Role), Content: m.Content}
	}
	return res
}

func toMessageDtos(messages []entity.Message) []dto.MessageDto {
	res := make([]dto.MessageDto, len(messages))
	for i, m := range messages {
		res[i] = dto.MessageDto{Role: string(m.Role), Content: m.Content}
	}
	return res
}

func toChatResponse(chat *entity.Chat) *dto.ChatResponse {
	return &dto.ChatResponse{
		Id:        chat.Id,
		UserId:    chat.UserId,
		Title:     chat.Title,
		Messages:  toMessageDtos(chat.Messages),
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
}
