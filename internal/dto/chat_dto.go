package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageDto struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatResponse struct {
	Id        uuid.UUID    `json:"id"`
	UserId    *uuid.UUID   `json:"userId"`
	Title     string       `json:"title"`
	Messages  []MessageDto `json:"messages"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type CreateChatRequest struct {
	Title    string       `json:"title" validate:"omitempty,max=255"`
	Messages []MessageDto `json:"messages" validate:"omitempty,dive"`
}

// UpdateChatRequest replaces the message list. A non-empty Title overrides
// the derived one.
type UpdateChatRequest struct {
	Title    string       `json:"title" validate:"omitempty,max=255"`
	Messages []MessageDto `json:"messages" validate:"required,dive"`
}

type ChatTurnRequest struct {
	ChatId   string       `json:"chatId"`
	Messages []MessageDto `json:"messages" validate:"required,min=1,dive"`
}

type ChatTurnResponse struct {
	Reply     string     `json:"reply"`
	ChatId    *uuid.UUID `json:"chatId"`
	IsNewChat bool       `json:"isNewChat"`
}

type SeedResponse struct {
	Message string         `json:"message"`
	Users   []UserResponse `json:"users"`
	Chats   int            `json:"chats"`
}
