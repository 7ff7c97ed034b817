package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"issue-analyzer/config"
	"issue-analyzer/internal/logger"
	"issue-analyzer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIssuesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "issues.json")
	data := `[
		{"id": "1", "title": "critical crash error system down"},
		{"id": "2", "title": "critical crash error system down"},
		{"id": "3", "title": "typo in documentation"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestNewApplication_WithoutStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = config.StoreBackendRedis
	cfg.Store.Redis.Host = "127.0.0.1"
	cfg.Store.Redis.Port = 1

	a, err := newApplication(context.Background(), cfg, logger.NewNop(), false)
	require.NoError(t, err, "an unreachable redis must not matter without a store")
	assert.Nil(t, a.store)
	assert.Equal(t, models.PriorityHigh, a.service.Classify("critical crash error system down").Label)

	assert.NotPanics(t, a.Close)
}

func TestNewApplication_SyncThenDetect(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Kind = config.SourceKindFile
	cfg.Source.IssuesFile = writeIssuesFile(t)

	a, err := newApplication(context.Background(), cfg, logger.NewNop(), true)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.store)

	ctx := context.Background()
	_, err = a.service.DetectDuplicates(ctx, "acme/web")
	require.Error(t, err, "a fresh memory store knows no repository")

	count, err := a.syncRepository(ctx, "acme/web")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	pairs, err := a.service.DetectDuplicates(ctx, "acme/web")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "1|2", pairs[0].Key())

	repo, err := a.repository(ctx, "acme/web")
	require.NoError(t, err)
	assert.Equal(t, "acme", repo.Owner)
}

func TestWarnEphemeralStore(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		var buf bytes.Buffer
		a := &application{cfg: config.Default()}
		a.warnEphemeralStore(&buf, "run history")
		assert.Contains(t, buf.String(), "run history is not kept between invocations")
		assert.Contains(t, buf.String(), "STORE_BACKEND=redis")
	})

	t.Run("redis backend", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.Default()
		cfg.Store.Backend = config.StoreBackendRedis
		a := &application{cfg: cfg}
		a.warnEphemeralStore(&buf, "run history")
		assert.Empty(t, buf.String())
	})
}

func TestClassifyRunsWithoutStore(t *testing.T) {
	assert.Equal(t, storeNone, classifyCmd.Annotations[annotationStore])
	for _, cmd := range []string{"sync", "analyze", "duplicates", "history", "watch"} {
		c, _, err := rootCmd.Find([]string{cmd})
		require.NoError(t, err)
		assert.NotEqual(t, storeNone, c.Annotations[annotationStore], cmd)
	}
}
