package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleDeferredErrorKeepsOriginal(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(&buf, slog.LevelInfo)

	original := errors.New("primary failure")
	err := original
	HandleDeferredError(&err, func() error { return errors.New("close failed") }, logger, "closing store")

	assert.ErrorIs(t, err, original)
	entry := parseLogLine(t, &buf)
	assert.Equal(t, "deferred operation failed", entry["msg"])
}

func TestHandleDeferredErrorSurfacesCleanupFailure(t *testing.T) {
	logger := NewStructuredLogger(&bytes.Buffer{}, slog.LevelInfo)

	var err error
	HandleDeferredError(&err, func() error { return errors.New("close failed") }, logger, "closing store")

	assert.ErrorContains(t, err, "closing store failed")
}

func TestHandleDeferredErrorCleanSuccess(t *testing.T) {
	logger := NewStructuredLogger(&bytes.Buffer{}, slog.LevelInfo)

	var err error
	HandleDeferredError(&err, func() error { return nil }, logger, "closing store")

	assert.NoError(t, err)
}

func TestHandleDeferredErrorNilOp(t *testing.T) {
	var err error
	assert.NotPanics(t, func() { HandleDeferredError(&err, nil, nil, "noop") })
	assert.NoError(t, err)
}
