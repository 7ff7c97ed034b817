package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"development", "production", "prod", ""} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode)
			require.NoError(t, err)
			assert.NotNil(t, l.SugaredLogger)
		})
	}
}

func TestLogger_KeyValues(t *testing.T) {
	l, logs := newObserved()

	l.With("repository_id", "acme/web").Info("analysis finished", "issues", 3)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "analysis finished", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "acme/web", fields["repository_id"])
	assert.EqualValues(t, 3, fields["issues"])
}

func TestLogger_RedactsCredentials(t *testing.T) {
	l, logs := newObserved()

	l.Warn("source configured", "github_token", "ghp_secret", "Authorization", "Bearer x", "page", 2)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["github_token"])
	assert.Equal(t, "[REDACTED]", fields["Authorization"])
	assert.EqualValues(t, 2, fields["page"])
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Debug("ignored", "k", "v")
		l.Error("ignored")
		l.Sync()
	})
}
