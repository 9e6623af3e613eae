package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSensitiveKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("sign in", "email", "a@b.c", "password", "hunter2", "uid", "u-1", "capsule", 3)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["email"])
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.NotEqual(t, "u-1", fields["uid"])
	assert.Len(t, fields["uid"], 12)
	assert.EqualValues(t, 3, fields["capsule"])
}

func TestWithKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With("component", "mindmap")

	l.Warn("deepen failed", "node", "root.2")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "mindmap", fields["component"])
	assert.Equal(t, "root.2", fields["node"])
}

func TestOddKeyValueCount(t *testing.T) {
	out := sanitize([]any{"a", 1, "dangling"})
	assert.Equal(t, []any{"a", 1, "dangling"}, out)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l, err := New(Options{Mode: "prod", Path: path})
	require.NoError(t, err)

	l.Info("hello", "api_key", "sk-123")
	l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello"))
	assert.False(t, strings.Contains(string(data), "sk-123"))
}

func TestDefaultPathHonoursEnv(t *testing.T) {
	t.Setenv("CAPSULEMED_LOG", "/tmp/x.log")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.log", p)
}
