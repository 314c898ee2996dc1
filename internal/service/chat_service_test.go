package service

import (
	"context"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, f *fixture, email string) uuid.UUID {
	t.Helper()
	user, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Email: email, Password: "password123"})
	require.NoError(t, err)
	return user.Id
}

func countMessages(t *testing.T, f *fixture, chatId uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Message{}).Where("chat_id = ?", chatId).Count(&n).Error)
	return n
}

func TestChatService_SendMessageEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")

	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	assert.Nil(t, chat.Title)

	res, err := f.chats.SendMessage(ctx, userId, chat.Id, "hello")
	require.NoError(t, err)

	assert.Equal(t, "hello", res.UserMessage.Content)
	assert.Equal(t, "user", res.UserMessage.Role)
	assert.Equal(t, "hi there", res.AssistantMessage.Content)
	assert.Equal(t, "assistant", res.AssistantMessage.Role)
	assert.Equal(t, chat.Id, res.UserMessage.ChatId)
	assert.Equal(t, chat.Id, res.AssistantMessage.ChatId)
	assert.True(t, res.AssistantMessage.CreatedAt.After(res.UserMessage.CreatedAt))

	assert.Equal(t, []llm.Message{{Role: "user", Content: "hello"}}, f.llm.history)
	assert.Contains(t, f.publisher.Types(), events.MessageSent)

	var stored model.Message
	require.NoError(t, f.db.First(&stored, "id = ?", res.AssistantMessage.Id).Error)
	assert.Equal(t, "fake/test-model", stored.Metadata["provider"])
	assert.Contains(t, stored.Metadata, "latency_ms")
}

func TestChatService_SendMessageSendsFullHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, userId, chat.Id, "first")
	require.NoError(t, err)
	f.llm.reply = "second reply"
	_, err = f.chats.SendMessage(ctx, userId, chat.Id, "second")
	require.NoError(t, err)

	assert.Equal(t, []llm.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "hi there"},
		{Role: "user", Content: "second"},
	}, f.llm.history)
}

func TestChatService_SendMessageBumpsUpdatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = f.chats.SendMessage(ctx, userId, chat.Id, "hello")
	require.NoError(t, err)

	var stored model.Chat
	require.NoError(t, f.db.First(&stored, "id = ?", chat.Id).Error)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))
}

func TestChatService_NonOwnerIsDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := registerUser(t, f, "owner@example.com")
	intruder := registerUser(t, f, "intruder@example.com")

	chat, err := f.chats.CreateChat(ctx, owner)
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, intruder, chat.Id, "let me in")
	assert.ErrorIs(t, err, ErrChatAccessDenied)
	assert.Zero(t, countMessages(t, f, chat.Id))
	assert.Zero(t, f.llm.Calls())

	_, err = f.chats.GetMessages(ctx, intruder, chat.Id)
	assert.ErrorIs(t, err, ErrChatAccessDenied)

	err = f.chats.DeleteChat(ctx, intruder, chat.Id)
	assert.ErrorIs(t, err, ErrChatAccessDenied)

	_, err = f.chats.RenameChat(ctx, intruder, chat.Id, "mine now")
	assert.ErrorIs(t, err, ErrChatAccessDenied)

	_, err = f.chats.SetFavorite(ctx, intruder, chat.Id, true)
	assert.ErrorIs(t, err, ErrChatAccessDenied)

	// Unknown chats look the same as foreign ones.
	_, err = f.chats.SendMessage(ctx, owner, uuid.New(), "hello?")
	assert.ErrorIs(t, err, ErrChatAccessDenied)
}

func TestChatService_OrphanedTurnOnProviderFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	f.llm.err = llm.StatusError(429, `{"error":"quota"}`)

	_, err = f.chats.SendMessage(ctx, userId, chat.Id, "are you there?")
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, ErrGenerationFailed.Error(), PublicMessage(err, "fallback"))
	assert.NotContains(t, PublicMessage(err, ""), "quota")

	messages, err := f.chats.GetMessages(ctx, userId, chat.Id)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "are you there?", messages[0].Content)
	assert.Equal(t, 1, f.llm.Calls())
}

func TestChatService_ProviderTimeout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	f.llm.delay = time.Second
	chats := NewChatService(f.uow, llm.WithTimeout(f.llm, 20*time.Millisecond), f.publisher, logger.NewNopLogger(), time.Second)

	_, err = chats.SendMessage(ctx, userId, chat.Id, "slow")
	require.ErrorIs(t, err, ErrGenerationFailed)

	assert.Contains(t, err.Error(), string(llm.KindTimeout))
	assert.Equal(t, int64(1), countMessages(t, f, chat.Id))
}

func TestChatService_MessageOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	chat, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.chats.SendMessage(ctx, userId, chat.Id, text)
		require.NoError(t, err)
	}

	messages, err := f.chats.GetMessages(ctx, userId, chat.Id)
	require.NoError(t, err)
	require.Len(t, messages, 6)

	var contents []string
	for i, m := range messages {
		contents = append(contents, m.Content)
		if i > 0 {
			assert.False(t, m.CreatedAt.Before(messages[i-1].CreatedAt))
		}
	}
	assert.Equal(t, []string{"one", "hi there", "two", "hi there", "three", "hi there"}, contents)
}

func TestChatService_SoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")

	keep, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	gone, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, userId, gone.Id, "hello")
	require.NoError(t, err)

	require.NoError(t, f.chats.DeleteChat(ctx, userId, gone.Id))

	chats, err := f.chats.ListChats(ctx, userId)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, keep.Id, chats[0].Id)

	// The row is tombstoned, not removed.
	var tombstone model.Chat
	require.NoError(t, f.db.Unscoped().First(&tombstone, "id = ?", gone.Id).Error)
	assert.True(t, tombstone.DeletedAt.Valid)
	assert.Equal(t, int64(2), countMessages(t, f, gone.Id))

	// A deleted chat no longer accepts messages.
	_, err = f.chats.SendMessage(ctx, userId, gone.Id, "still there?")
	assert.ErrorIs(t, err, ErrChatAccessDenied)

	assert.Contains(t, f.publisher.Types(), events.ChatDeleted)
}

func TestChatService_StaleUpdateKeepsTombstone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")

	created, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	repo := f.uow.NewUnitOfWork(ctx).ChatRepository()
	loaded, err := repo.FindOwned(ctx, created.Id, userId)
	require.NoError(t, err)

	require.NoError(t, f.chats.DeleteChat(ctx, userId, created.Id))

	title := "Renamed after delete"
	_, err = repo.Update(ctx, loaded.Id, contract.ChatUpdate{Title: &title})
	assert.ErrorIs(t, err, contract.ErrChatNotFound)

	var tombstone model.Chat
	require.NoError(t, f.db.Unscoped().First(&tombstone, "id = ?", created.Id).Error)
	assert.True(t, tombstone.DeletedAt.Valid)
	assert.Nil(t, tombstone.Title)

	chats, err := f.chats.ListChats(ctx, userId)
	require.NoError(t, err)
	assert.Empty(t, chats)

	_, err = f.chats.RenameChat(ctx, userId, created.Id, "again")
	assert.ErrorIs(t, err, ErrChatAccessDenied)
	_, err = f.chats.SetFavorite(ctx, userId, created.Id, true)
	assert.ErrorIs(t, err, ErrChatAccessDenied)
}

func TestChatService_UpdatesTouchOnlyTheirColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")

	created, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	// Two writers start from the same snapshot.
	repo := f.uow.NewUnitOfWork(ctx).ChatRepository()
	_, err = repo.FindOwned(ctx, created.Id, userId)
	require.NoError(t, err)

	_, err = f.chats.RenameChat(ctx, userId, created.Id, "Trip Planning")
	require.NoError(t, err)

	favorite := true
	updated, err := repo.Update(ctx, created.Id, contract.ChatUpdate{IsFavorite: &favorite})
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
	require.NotNil(t, updated.Title)
	assert.Equal(t, "Trip Planning", *updated.Title)

	var stored model.Chat
	require.NoError(t, f.db.First(&stored, "id = ?", created.Id).Error)
	require.NotNil(t, stored.Title)
	assert.Equal(t, "Trip Planning", *stored.Title)
	assert.True(t, stored.IsFavorite)
}

func TestChatService_ListOrderingAndIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")
	other := registerUser(t, f, "u2@example.com")

	first, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	third, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	_, err = f.chats.CreateChat(ctx, other)
	require.NoError(t, err)

	chats, err := f.chats.ListChats(ctx, userId)
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, []uuid.UUID{third.Id, second.Id, first.Id}, []uuid.UUID{chats[0].Id, chats[1].Id, chats[2].Id})

	fav, err := f.chats.SetFavorite(ctx, userId, first.Id, true)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)

	chats, err = f.chats.ListChats(ctx, userId)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.Id, third.Id, second.Id}, []uuid.UUID{chats[0].Id, chats[1].Id, chats[2].Id})
}

func TestChatService_RenameAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := registerUser(t, f, "u1@example.com")

	a, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	b, err := f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)
	_, err = f.chats.CreateChat(ctx, userId)
	require.NoError(t, err)

	renamed, err := f.chats.RenameChat(ctx, userId, a.Id, "Go Concurrency Tips")
	require.NoError(t, err)
	require.NotNil(t, renamed.Title)
	assert.Equal(t, "Go Concurrency Tips", *renamed.Title)

	_, err = f.chats.RenameChat(ctx, userId, b.Id, "100% legit_title")
	require.NoError(t, err)

	found, err := f.chats.SearchChats(ctx, userId, "concurrency")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, a.Id, found[0].Id)

	// LIKE wildcards in the query are matched literally.
	found, err = f.chats.SearchChats(ctx, userId, "0% legit_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, b.Id, found[0].Id)

	found, err = f.chats.SearchChats(ctx, userId, "_")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	other := registerUser(t, f, "u2@example.com")
	found, err = f.chats.SearchChats(ctx, other, "go")
	require.NoError(t, err)
	assert.Empty(t, found)
}
