package service

import (
	"context"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/apperror"
	"chatbot-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	email    string
	password string
}

var seedUsers = []seedUser{
	{email: "jorge@example.com", password: "123456"},
	{email: "emir@example.com", password: "654321"},
}

const sampleChatTitle = "Sample chat"

var sampleChatMessages = []entity.Message{
	{Role: entity.MessageRoleUser, Content: "Hi, how are you?"},
	{Role: entity.MessageRoleAssistant, Content: "I'm doing well, thanks for asking."},
}

type ISeedService interface {
	// Seed wipes every chat and user, then recreates the development accounts.
	Seed(ctx context.Context) (*dto.SeedResponse, error)
}

type seedService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
}

func NewSeedService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher) ISeedService {
	return &seedService{
		uowFactory: uowFactory,
		publisher:  publisher,
	}
}

func (s *seedService) Seed(ctx context.Context) (*dto.SeedResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Internal("failed to start transaction", err)
	}
	defer uow.Rollback()

	if err := uow.ChatRepository().DeleteAll(ctx); err != nil {
		return nil, apperror.Internal("failed to clear chats", err)
	}
	if err := uow.UserRepository().DeleteAll(ctx); err != nil {
		return nil, apperror.Internal("failed to clear users", err)
	}

	res := &dto.SeedResponse{Message: "Seed completed, users created."}
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.Internal("failed to hash password", err)
		}

		user := &entity.User{Id: uuid.New(), Email: su.email, PasswordHash: string(hash)}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, apperror.Internal("failed to create user", err)
		}

		chat := &entity.Chat{
			UserId:   &user.Id,
			Title:    sampleChatTitle,
			Messages: append([]entity.Message(nil), sampleChatMessages...),
		}
		if err := uow.ChatRepository().Create(ctx, chat); err != nil {
			return nil, apperror.Internal("failed to create chat", err)
		}

		res.Users = append(res.Users, dto.UserResponse{Id: user.Id, Email: user.Email})
		res.Chats++
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Internal("failed to commit seed", err)
	}

	s.publisher.PublishDevelopmentSeeded(ctx, len(res.Users), res.Chats)
	return res, nil
}
