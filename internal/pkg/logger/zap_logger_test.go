package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WritesModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLoggerFrom(zap.New(core))

	l.Info("CHAT", "message sent", map[string]interface{}{"chat_id": "c1"})
	l.Warn("AUTH", "no details", nil)
	l.Error("LLM", "provider failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "CHAT", first["module"])
	assert.Equal(t, map[string]interface{}{"chat_id": "c1"}, first["details"])

	assert.Equal(t, map[string]interface{}{}, entries[1].ContextMap()["details"])
	assert.Contains(t, entries[2].ContextMap(), "error_ref")
}

func TestZapLogger_IsolatedWritesFile(t *testing.T) {
	path := t.TempDir() + "/audit.log"
	l := NewIsolatedLogger(path)
	l.Info("AUDIT", "USER_REGISTERED", nil)
	assert.NoError(t, l.Sync())
	assert.FileExists(t, path)
}
