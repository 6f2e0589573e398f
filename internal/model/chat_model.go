package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Chat struct {
	Id        uuid.UUID                        `gorm:"type:uuid;primaryKey"`
	UserId    *uuid.UUID                       `gorm:"type:uuid;index"` // NULL for ownerless chats
	Title     string                           `gorm:"type:varchar(255);not null"`
	Messages  datatypes.JSONSlice[ChatMessage] `gorm:"not null"`
	CreatedAt time.Time                        `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time                        `gorm:"autoUpdateTime;index"`
}

func (Chat) TableName() string {
	return "chats"
}
