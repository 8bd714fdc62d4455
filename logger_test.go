package ixcoll

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	logger.LogMutation(ctx, "add", 1, 3)
	assert.Contains(t, buf.String(), "op=add affected=1 size=3")

	buf.Reset()
	logger.WithIndex("top").LogRebuild(ctx, 2, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "index=top")

	buf.Reset()
	logger.LogDiagnostic(ctx, Diagnostic{Index: "name", Kind: KindSingle, Op: "by", Stage: "input"}, 4)
	assert.Contains(t, buf.String(), "suppressed=4")
	assert.Contains(t, buf.String(), "kind=single")
}

func TestRebuildLogsPerIndex(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newItems(t, []Index[int, item]{scoreSum()}, WithLogger(logger))

	assert.NoError(t, c.Rebuild(context.Background()))
	assert.Contains(t, buf.String(), "index recomputed")
	assert.Contains(t, buf.String(), "index=sum")
	assert.Contains(t, buf.String(), "rebuild completed")
}

func TestNoopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopLogger().LogMutation(context.Background(), "clear", 0, 0)
	})
}
