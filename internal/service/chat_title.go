package service

import (
	"strings"

	"chatbot-be/internal/constant"
	"chatbot-be/internal/entity"
)

// DeriveTitle builds a chat title from the first user message: its first 30
// characters, with "..." appended when the message is longer.
func DeriveTitle(messages []entity.Message) string {
	for _, msg := range messages {
		if msg.Role != entity.MessageRoleUser {
			continue
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		runes := []rune(content)
		if len(runes) > constant.ChatTitleMaxChars {
			return string(runes[:constant.ChatTitleMaxChars]) + "..."
		}
		return content
	}
	return constant.DefaultChatTitle
}

// titleAfterUpdate recomputes the title only for a chat that still carries
// the default title and now holds exactly one message.
func titleAfterUpdate(current string, messages []entity.Message) string {
	if len(messages) == 1 && strings.HasPrefix(current, constant.DefaultChatTitle) {
		return DeriveTitle(messages)
	}
	return current
}
