package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"user", "admin", "Password", "hunter2", "csrf_token", "abc", "dangling"})
	want := []interface{}{"user", "admin", "Password", "[REDACTED]", "csrf_token", "[REDACTED]", "dangling"}
	assert.Equal(t, want, got)
	assert.Empty(t, sanitizeKVs(nil))
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "store").Info("saved", "id", "p1", "secret", "s")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "saved", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "store", ctx["component"])
	assert.Equal(t, "p1", ctx["id"])
	assert.Equal(t, "[REDACTED]", ctx["secret"])
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		require.NoError(t, err)
		l.Debug("hello")
	}
	Nop().Error("discarded")
}
