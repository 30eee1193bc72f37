package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "furnish-api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithOrderID(ctx, "order-9")
	logg.Info(ctx, "order.created")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "order.created", lines[0]["message"])
	assert.Equal(t, "furnish-api", lines[0]["service"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "order-9", lines[0]["order_id"])
}

func TestLogger_FieldsDoNotLeakIntoParentContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{Output: &buf})

	parent := context.Background()
	_ = logg.WithFields(parent, map[string]any{"status": 201})
	logg.Info(parent, "plain")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "status")
}

func TestLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{Output: &buf})

	logg.Error(context.Background(), "store.failed", errors.New("connection refused"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "connection refused", lines[0]["error"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{Output: &buf, Level: zerolog.WarnLevel})

	logg.Info(context.Background(), "hidden")
	logg.Warn(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNop(t *testing.T) {
	logg := Nop()
	assert.NotPanics(t, func() {
		logg.Info(context.Background(), "discarded")
		logg.Error(context.TODO(), "discarded", nil)
	})
}
