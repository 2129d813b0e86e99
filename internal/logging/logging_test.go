package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tracewalk.log")
	logger, closeFn, err := New(Options{Path: path, Level: "debug"})
	require.NoError(t, err)

	logger.Info("user created", zap.String("userid", "42"))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	require.Equal(t, "user created", line["message"])
	require.Equal(t, "42", line["userid"])
	require.Contains(t, line, "time")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	require.Error(t, err)
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	logger, closeFn, err := New(Options{})
	require.NoError(t, err)
	logger.Info("dropped")
	require.NoError(t, closeFn())
}

func TestCtxAddsTraceFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Console: &buf})
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Ctx(ctx, logger).Info("traced")
	Ctx(context.Background(), logger).Info("untraced")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], span.SpanContext().TraceID().String())
	require.NotContains(t, lines[1], "trace_id")
}
