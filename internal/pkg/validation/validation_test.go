package validation

import (
	"testing"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestStruct_Signup(t *testing.T) {
	assert.NoError(t, Struct(&dto.SignupRequest{Email: "a@b.com", Password: "123456"}))

	err := Struct(&dto.SignupRequest{Email: "not-an-email", Password: "123456"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Equal(t, "email must be a valid email address", err.Error())

	err = Struct(&dto.SignupRequest{Email: "a@b.com", Password: "123"})
	assert.Equal(t, "password must be at least 6 characters", err.Error())
}

func TestStruct_ChatTurnMessages(t *testing.T) {
	err := Struct(&dto.ChatTurnRequest{Messages: []dto.MessageDto{}})
	assert.Equal(t, "messages must contain at least 1 item(s)", err.Error())

	err = Struct(&dto.ChatTurnRequest{Messages: []dto.MessageDto{{Role: "model", Content: "hi"}}})
	assert.Equal(t, "messages[0].role must be one of: user, assistant", err.Error())

	err = Struct(&dto.ChatTurnRequest{Messages: []dto.MessageDto{{Role: "user"}}})
	assert.Equal(t, "messages[0].content is required", err.Error())
}
