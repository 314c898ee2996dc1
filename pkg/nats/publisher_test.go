package nats

import (
	"testing"

	"ai-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "chat.events.message_sent", Subject(events.MessageSent))
	assert.Equal(t, "chat.events.user_registered", Subject(events.UserRegistered))
}
