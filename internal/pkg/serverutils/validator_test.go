package serverutils

import (
	"errors"
	"strings"
	"testing"

	"ai-chat-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_BodyShape(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty", "", ErrInvalidJSON},
		{"broken", `{"chatId":`, ErrInvalidJSON},
		{"array", `[1,2]`, ErrInvalidBody},
		{"string", `"hello"`, ErrInvalidBody},
		{"null", `null`, ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.ChatIdRequest
			err := v.DecodeJSON([]byte(tt.body), &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeJSON_FieldMessages(t *testing.T) {
	v := NewValidator()
	validChat := "6f1c2d7e-8a41-4b55-9d0b-2b0f6a0c1e11"

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing chatId", `{"message":"hi"}`, "Valid chatId is required"},
		{"bad chatId", `{"chatId":"nope","message":"hi"}`, "Valid chatId is required"},
		{"wrong type", `{"chatId":42,"message":"hi"}`, "Invalid value for chatId"},
		{"empty message", `{"chatId":"` + validChat + `","message":""}`, "Message cannot be empty"},
		{"long message", `{"chatId":"` + validChat + `","message":"` + strings.Repeat("a", 2001) + `"}`, "Message too long (max 2000 characters)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.SendMessageRequest
			err := v.DecodeJSON([]byte(tt.body), &req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Message)
		})
	}

	t.Run("max length accepted", func(t *testing.T) {
		var req dto.SendMessageRequest
		body := `{"chatId":"` + validChat + `","message":"` + strings.Repeat("é", 2000) + `"}`
		require.NoError(t, v.DecodeJSON([]byte(body), &req))
		assert.Equal(t, validChat, req.ChatId)
	})
}

func TestDecodeJSON_Register(t *testing.T) {
	v := NewValidator()

	t.Run("email normalized", func(t *testing.T) {
		var req dto.RegisterRequest
		require.NoError(t, v.DecodeJSON([]byte(`{"email":"  Ana@Example.COM ","password":"password123"}`), &req))
		assert.Equal(t, "ana@example.com", req.Email)
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing email", `{"password":"password123"}`, "Valid email is required"},
		{"bad email", `{"email":"ana@example","password":"password123"}`, "Invalid email format"},
		{"space in email", `{"email":"a na@example.com","password":"password123"}`, "Invalid email format"},
		{"short password", `{"email":"ana@example.com","password":"short"}`, "Password must be at least 8 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.RegisterRequest
			err := v.DecodeJSON([]byte(tt.body), &req)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Message)
		})
	}
}

func TestStruct_QueryAndTitle(t *testing.T) {
	v := NewValidator()

	err := v.Struct(&dto.ChatMessagesQuery{ChatId: "x"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Valid chatId is required", verr.Message)

	rename := &dto.RenameChatRequest{ChatId: "6f1c2d7e-8a41-4b55-9d0b-2b0f6a0c1e11", Title: "   "}
	err = v.Struct(rename)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Title cannot be empty", verr.Message)

	rename.Title = strings.Repeat("t", 101)
	err = v.Struct(rename)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Title too long (max 100 characters)", verr.Message)
}

func TestDecodeJSON_TitleMessageTrimmed(t *testing.T) {
	v := NewValidator()
	validChat := "6f1c2d7e-8a41-4b55-9d0b-2b0f6a0c1e11"

	var req dto.GenerateTitleRequest
	err := v.DecodeJSON([]byte(`{"chatId":"`+validChat+`","message":" \n\t "}`), &req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "Message cannot be empty", verr.Message)

	req = dto.GenerateTitleRequest{}
	require.NoError(t, v.DecodeJSON([]byte(`{"chatId":"`+validChat+`","message":"  plan a trip  "}`), &req))
	assert.Equal(t, "plan a trip", req.Message)
}
