package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"humesync/pkg/errors"
)

type recordingTracker struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (r *recordingTracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
	return nil
}

func (r *recordingTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (r *recordingTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (r *recordingTracker) Flush(context.Context) error { return nil }

func TestWithRemembersComponentForTracker(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(New(zap.New(core)))
	tracker := &recordingTracker{}
	SetErrorTracker(tracker)
	t.Cleanup(func() { Set(nil) })

	log := Get().With("component", "hume_client")
	log.Errorf("create failed: %d", 500)

	require.Len(t, tracker.errs, 1)
	assert.Equal(t, "create failed: 500", tracker.errs[0].Error())
	assert.Equal(t, "hume_client", tracker.tags[0]["component"])

	entries := logs.FilterMessage("create failed: 500").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hume_client", entries[0].ContextMap()["component"])
}

func TestErrorWithoutTrackerOnlyLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(New(zap.New(core)))
	t.Cleanup(func() { Set(nil) })

	Get().Errorw("list failed", "status", 503)

	assert.Equal(t, 1, logs.Len())
}

func TestInitFallsBackToInfoLevel(t *testing.T) {
	require.NoError(t, Init("not-a-level", "development"))
	t.Cleanup(func() { Set(nil) })

	assert.False(t, Get().Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Get().Desugar().Core().Enabled(zapcore.InfoLevel))
}
