package sentry

import (
	"context"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humesync/pkg/errors"
)

func TestTrackerWithEmptyDSN(t *testing.T) {
	tracker, err := New("", "test", "dev")
	require.NoError(t, err)

	var _ errors.Tracker = tracker

	ctx := context.Background()
	assert.NoError(t, tracker.CaptureError(ctx, errors.NewDomainError("HUME_CREATE", "create failed", errors.ErrUnavailable), map[string]string{"op": "create"}))
	assert.NoError(t, tracker.CaptureError(ctx, nil, nil))
	assert.NoError(t, tracker.CaptureMessage(ctx, "hello", errors.LevelWarning, nil))
	tracker.AddBreadcrumb(ctx, "provider call", "hume", errors.LevelInfo, map[string]interface{}{"status": 201})
}

func TestConvertLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelWarning, convertLevel(errors.LevelWarning))
	assert.Equal(t, sentry.LevelFatal, convertLevel(errors.LevelFatal))
	assert.Equal(t, sentry.LevelInfo, convertLevel(errors.Level("other")))
}
