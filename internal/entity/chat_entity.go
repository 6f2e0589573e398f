package entity

import (
	"time"

	"chatbot-be/internal/constant"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type Chat struct {
	Id        uuid.UUID
	UserId    *uuid.UUID // nil for chats persisted without an owner
	Title     string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy so stores never share message slices with callers.
func (c *Chat) Clone() *Chat {
	if c == nil {
		return nil
	}
	cp := *c
	if c.UserId != nil {
		owner := *c.UserId
		cp.UserId = &owner
	}
	cp.Messages = append([]Message(nil), c.Messages...)
	return &cp
}

func (c *Chat) OwnedBy(userId uuid.UUID) bool {
	return c.UserId != nil && *c.UserId == userId
}

// PrepareForCreate fills the fields a store assigns on insert.
func (c *Chat) PrepareForCreate(now time.Time) {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	if c.Title == "" {
		c.Title = constant.DefaultChatTitle
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}
}

// Touch refreshes UpdatedAt without ever moving it before CreatedAt.
func (c *Chat) Touch(now time.Time) {
	if now.Before(c.CreatedAt) {
		now = c.CreatedAt
	}
	c.UpdatedAt = now
}
