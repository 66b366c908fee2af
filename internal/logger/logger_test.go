package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	got := sanitizeKVs([]any{"lesson_id", "L1", "api_token", "abc", "Authorization", "Bearer x", "dangling"})
	assert.Equal(t, []any{"lesson_id", "L1", "api_token", "[REDACTED]", "Authorization", "[REDACTED]", "dangling"}, got)
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "test").Info("saved", "lesson_id", "L1", "token", "t")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "test", fields["component"])
		assert.Equal(t, "L1", fields["lesson_id"])
		assert.Equal(t, "[REDACTED]", fields["token"])
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examprep.log")
	l, err := New("prod", path)
	require.NoError(t, err)

	l.Info("lesson saved", "lesson_id", "L1")
	l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lesson_id":"L1"`)
}
