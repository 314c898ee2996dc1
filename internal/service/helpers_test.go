package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeLLM struct {
	mu         sync.Mutex
	reply      string
	err        error
	delay      time.Duration
	calls      int
	history    []llm.Message
	lastPrompt string
	maxTokens  int
	// onCall runs before each completion returns.
	onCall func()
}

func (f *fakeLLM) Name() string { return "fake/test-model" }

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	f.mu.Lock()
	f.calls++
	f.history = append([]llm.Message(nil), history...)
	reply, err, delay, onCall := f.reply, f.err, f.delay, f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall()
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	f.lastPrompt = prompt
	f.maxTokens = llm.ApplyOptions(opts...).MaxTokens
	f.mu.Unlock()
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("file::memory:", gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	uow       unitofwork.RepositoryFactory
	llm       *fakeLLM
	publisher *recordingPublisher
	auth      IAuthService
	chats     IChatService
	titles    ITitleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	uow := unitofwork.NewRepositoryFactory(db)
	fake := &fakeLLM{reply: "hi there"}
	pub := &recordingPublisher{}
	log := logger.NewNopLogger()

	authCfg := config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	}

	return &fixture{
		db:        db,
		uow:       uow,
		llm:       fake,
		publisher: pub,
		auth: NewAuthService(uow, memory.NewUserCache(time.Minute), memory.NewTokenBlocklist(),
			mailer.NewEmailService("", 0, "", "", "", log), pub, log, authCfg, 5*time.Second),
		chats:  NewChatService(uow, fake, pub, log, 5*time.Second),
		titles: NewTitleService(uow, fake, pub, log, 5*time.Second),
	}
}
