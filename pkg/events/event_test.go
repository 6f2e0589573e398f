package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := Encode(BaseEvent{
		Type:       "CHAT_CREATED",
		Data:       map[string]interface{}{"chat_id": "c1"},
		OccurredAt: at,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CHAT_CREATED","data":{"chat_id":"c1"},"occurred_at":"2024-05-01T12:00:00Z"}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "CHAT_CREATED", decoded.EventType())
	assert.Equal(t, "c1", decoded.Payload()["chat_id"])
	assert.True(t, at.Equal(decoded.Timestamp()))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("nope"))
	assert.Error(t, err)
}
