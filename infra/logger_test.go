package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerClientWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf)

	logger.ErrorWithContextf(context.Background(), errors.New("boom"), "[Server] Failed to delete %s", "srv-01")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "[Server] Failed to delete srv-01", record["msg"])
	assert.Equal(t, "boom", record["error"])
}

func TestLoggerClientNilSafe(t *testing.T) {
	var logger *LoggerClient
	assert.NotPanics(t, func() {
		logger.InfoWithContextf(context.Background(), "ignored")
	})
}

func TestFanoutHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &fanoutHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("component", "test")

	logger.Info("only debug handler")
	logger.Warn("both handlers")

	assert.Contains(t, debugBuf.String(), "only debug handler")
	assert.Contains(t, debugBuf.String(), "both handlers")
	assert.NotContains(t, warnBuf.String(), "only debug handler")
	assert.Contains(t, warnBuf.String(), "component=test")
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug-1))
}
