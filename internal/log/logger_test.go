package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf, slog.LevelDebug, ComponentSummary)

	NewStructuredLogger(logger).LogRecordWritten(context.Background(), OpCreate, "r-1", "expense", "bank", 12.5)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Record written", line["msg"])
	assert.Equal(t, "r-1", line[FieldRecordID])
	assert.Equal(t, "bank", line[FieldPayMethod])
	assert.Equal(t, 12.5, line[FieldAmount])
	assert.Equal(t, OpCreate, line[FieldOperation])
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	var buf bytes.Buffer
	logger := NewJSON(&buf, slog.LevelInfo, ComponentHTTP)

	ctx := context.WithValue(context.Background(), LoggerContextKey, logger.WithComponent(ComponentRecords))
	seen := FromContext(ctx)
	seen.InfoContext(ctx, "listed")

	require.NotNil(t, seen)
	assert.Equal(t, ComponentRecords, seen.Component())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, ComponentRecords, line[FieldComponent])
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithEntity("c1", "company").WithError(nil)
	assert.Equal(t, "c1", f[FieldEntityID])
	_, hasErr := f[FieldError]
	assert.False(t, hasErr)
	assert.Len(t, f.ToSlice(), 4)
}
