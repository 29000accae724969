package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelDebug, "json")
	ctx := context.Background()

	LogWarn(ctx, logger, errors.New("sheets down"), "mirror write failed", Fields{"user_id": 7, "type": "OFFERS"})
	LogError(ctx, logger, errors.New("disk full"), "failed to save report", Fields{"user_id": 7})
	LogInfo(ctx, logger, "report saved", Fields{"record_id": "r1"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], `"level":"WARN"`)
	assert.Contains(t, lines[0], `"error":"sheets down"`)
	assert.Less(t, strings.Index(lines[0], `"type"`), strings.Index(lines[0], `"user_id"`), "fields are sorted")

	assert.Contains(t, lines[1], `"level":"ERROR"`)
	assert.Contains(t, lines[1], `"error":"disk full"`)

	assert.Contains(t, lines[2], `"level":"INFO"`)
	assert.Contains(t, lines[2], `"record_id":"r1"`)
	assert.NotContains(t, lines[2], `"error"`)
}

func TestLogHelpers_NilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&buf, slog.LevelInfo, "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogWarn(context.Background(), nil, errors.New("boom"), "retrying", nil)
	assert.Contains(t, buf.String(), `"msg":"retrying"`)
}
