package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chatbot-be/internal/config"
	"chatbot-be/internal/constant"
	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/events"
	"chatbot-be/internal/pkg/logger"
	"chatbot-be/internal/pkg/validation"
	"chatbot-be/internal/repository/memory"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

var errEmptyReply = errors.New("model returned an empty reply")

type IConversationService interface {
	// Turn answers the last message of req. A nil userId marks an anonymous
	// caller. Store failures are masked with a fallback reply, so the only
	// error Turn returns is a validation error.
	Turn(ctx context.Context, userId *uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error)
}

// AnonymousSessionStore holds ephemeral anonymous conversations.
type AnonymousSessionStore interface {
	Save(session *memory.AnonymousSession)
	Get(sessionID string) (*memory.AnonymousSession, bool)
}

type ConversationOptions struct {
	Timeout       time.Duration
	AnonymousMode string
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   llm.LLMProvider
	sessions   AnonymousSessionStore
	publisher  events.Publisher
	logger     logger.ILogger
	opts       ConversationOptions
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	sessions AnonymousSessionStore,
	publisher events.Publisher,
	logger logger.ILogger,
	opts ConversationOptions,
) IConversationService {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.AnonymousMode == "" {
		opts.AnonymousMode = config.AnonymousModeNone
	}
	return &conversationService{
		uowFactory: uowFactory,
		provider:   provider,
		sessions:   sessions,
		publisher:  publisher,
		logger:     logger,
		opts:       opts,
	}
}

func (s *conversationService) Turn(ctx context.Context, userId *uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	messages := toMessageEntities(req.Messages)

	if userId != nil {
		return s.storedTurn(ctx, userId, req.ChatId, messages, constant.AuthenticatedMaxOutputTokens), nil
	}

	switch s.opts.AnonymousMode {
	case config.AnonymousModePersist:
		return s.storedTurn(ctx, nil, req.ChatId, messages, constant.AnonymousMaxOutputTokens), nil
	case config.AnonymousModeEphemeral:
		if s.sessions != nil {
			return s.ephemeralTurn(ctx, req.ChatId, messages), nil
		}
	}
	return s.statelessTurn(ctx, messages), nil
}

func (s *conversationService) statelessTurn(ctx context.Context, messages []entity.Message) *dto.ChatTurnResponse {
	reply, genErr := s.generate(ctx, messages, constant.AnonymousMaxOutputTokens)

	s.publisher.PublishChatTurnCompleted(ctx, events.TurnOutcome{
		IsNewChat: true,
		Fallback:  genErr != nil,
		Messages:  len(messages) + 1,
	})

	return &dto.ChatTurnResponse{Reply: reply, ChatId: nil, IsNewChat: true}
}

// ephemeralTurn continues a cached session when chatId names one. A single
// client message is appended to the cached history; a longer list replaces it.
func (s *conversationService) ephemeralTurn(ctx context.Context, chatId string, messages []entity.Message) *dto.ChatTurnResponse {
	history := messages
	isNew := true

	sessionId, err := uuid.Parse(chatId)
	if err == nil {
		if session, ok := s.sessions.Get(sessionId.String()); ok {
			isNew = false
			if len(messages) == 1 {
				history = append(session.Messages, messages...)
			}
		}
	}
	if isNew {
		sessionId = uuid.New()
	}

	reply, genErr := s.generate(ctx, history, constant.AnonymousMaxOutputTokens)
	history = withReply(history, reply)

	s.sessions.Save(&memory.AnonymousSession{ID: sessionId.String(), Messages: history})

	s.publisher.PublishChatTurnCompleted(ctx, events.TurnOutcome{
		IsNewChat: isNew,
		Fallback:  genErr != nil,
		Messages:  len(history),
	})

	return &dto.ChatTurnResponse{Reply: reply, ChatId: &sessionId, IsNewChat: isNew}
}

// storedTurn resolves or creates the target chat, asks the model and writes
// the chat once the reply is known. A nil owner targets ownerless chats.
func (s *conversationService) storedTurn(ctx context.Context, owner *uuid.UUID, chatId string, messages []entity.Message, maxTokens int) *dto.ChatTurnResponse {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, isNew, err := s.resolveChat(ctx, uow, owner, chatId, messages)
	if err != nil {
		return s.degrade(ctx, uow, owner, nil, messages, err)
	}

	reply, genErr := s.generate(ctx, messages, maxTokens)
	chat.Messages = withReply(messages, reply)

	if isNew {
		err = uow.ChatRepository().Create(ctx, chat)
	} else {
		err = uow.ChatRepository().Update(ctx, chat)
	}
	if err != nil {
		if isNew {
			chat = nil
		}
		return s.degrade(ctx, uow, owner, chat, messages, err)
	}

	s.publisher.PublishChatTurnCompleted(ctx, events.TurnOutcome{
		ChatId:    &chat.Id,
		UserId:    owner,
		IsNewChat: isNew,
		Fallback:  genErr != nil,
		Messages:  len(chat.Messages),
	})

	id := chat.Id
	return &dto.ChatTurnResponse{Reply: reply, ChatId: &id, IsNewChat: isNew}
}

// resolveChat returns the existing chat named by chatId, or a new unsaved
// chat when chatId is empty, malformed or unknown to the owner.
func (s *conversationService) resolveChat(ctx context.Context, uow unitofwork.UnitOfWork, owner *uuid.UUID, chatId string, messages []entity.Message) (*entity.Chat, bool, error) {
	if id, err := uuid.Parse(strings.TrimSpace(chatId)); err == nil {
		chat, err := uow.ChatRepository().FindByIdForUser(ctx, id, owner)
		if err != nil {
			return nil, false, err
		}
		if chat != nil {
			return chat, false, nil
		}
	}

	return &entity.Chat{
		UserId: owner,
		Title:  DeriveTitle(messages),
	}, true, nil
}

// generate never fails the turn: model errors, timeouts and empty output all
// yield the fixed fallback reply, reported through the returned error.
func (s *conversationService) generate(ctx context.Context, messages []entity.Message, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	history := make([]llm.Message, len(messages))
	for i, m := range messages {
		history[i] = llm.Message{Role: string(m.Role), Content: m.Content}
	}

	reply, err := s.provider.Chat(ctx, history,
		llm.WithTemperature(constant.GenerationTemperature),
		llm.WithMaxTokens(maxTokens),
	)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errEmptyReply
	}
	if err != nil {
		s.logger.Warn("CONVERSATION", "Model call failed, using fallback reply", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.FallbackReplyModelError, err
	}
	return reply, nil
}

// degrade records the internal fallback reply against chat when it exists,
// else against a new chat holding the first user message. The response is
// still a normal reply; its chat id is nil when even that write fails.
func (s *conversationService) degrade(ctx context.Context, uow unitofwork.UnitOfWork, owner *uuid.UUID, chat *entity.Chat, messages []entity.Message, cause error) *dto.ChatTurnResponse {
	s.logger.Error("CONVERSATION", "Chat turn failed", map[string]interface{}{
		"error": cause.Error(),
	})

	isNew := chat == nil
	var writeErr error
	if isNew {
		chat = &entity.Chat{
			UserId:   owner,
			Title:    DeriveTitle(messages),
			Messages: withReply(firstUserMessage(messages), constant.FallbackReplyInternalError),
		}
		writeErr = uow.ChatRepository().Create(ctx, chat)
	} else {
		chat.Messages = withReply(messages, constant.FallbackReplyInternalError)
		writeErr = uow.ChatRepository().Update(ctx, chat)
	}

	var chatId *uuid.UUID
	if writeErr != nil {
		s.logger.Error("CONVERSATION", "Failed to store fallback reply", map[string]interface{}{
			"error": writeErr.Error(),
		})
	} else {
		id := chat.Id
		chatId = &id
	}

	s.publisher.PublishChatTurnDegraded(ctx, events.TurnOutcome{
		ChatId:    chatId,
		UserId:    owner,
		IsNewChat: isNew,
		Fallback:  true,
		Messages:  len(chat.Messages),
	}, cause)

	return &dto.ChatTurnResponse{
		Reply:     constant.FallbackReplyInternalError,
		ChatId:    chatId,
		IsNewChat: isNew,
	}
}

func withReply(messages []entity.Message, reply string) []entity.Message {
	out := make([]entity.Message, 0, len(messages)+1)
	out = append(out, messages...)
	return append(out, entity.Message{Role: entity.MessageRoleAssistant, Content: reply})
}

func firstUserMessage(messages []entity.Message) []entity.Message {
	for _, m := range messages {
		if m.Role == entity.MessageRoleUser {
			return []entity.Message{m}
		}
	}
	return nil
}
