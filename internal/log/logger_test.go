package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	httpLogger := logger.WithComponent(ComponentHTTP)
	assert.Equal(t, ComponentHTTP, httpLogger.Component())

	httpLogger.Info("request served")
	assert.Contains(t, buf.String(), "component="+ComponentHTTP)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	ctx := IntoContext(context.Background(), logger)
	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Same(t, logger, got)

	// a bare context still yields a usable logger
	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, "unknown", fallback.Component())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, ComponentApp, cfg.Component)
}
