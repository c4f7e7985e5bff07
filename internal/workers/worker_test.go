package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"humesync/pkg/errors"
)

func TestBaseWorker_Health(t *testing.T) {
	w := NewBaseWorker("agent_reconcile", time.Minute, true)

	h := w.Health()
	assert.Zero(t, h.RunCount)
	assert.Zero(t, h.AvgDuration)
	assert.True(t, h.Enabled)

	w.RecordError(errors.ErrUnavailable, 3*time.Second)
	w.RecordError(errors.ErrTimeout, time.Second)

	h = w.Health()
	assert.Equal(t, int64(2), h.ConsecutiveErrors)
	assert.True(t, h.Failing())
	assert.ErrorIs(t, h.LastError, errors.ErrTimeout)
	assert.Equal(t, time.Second, h.LastDuration)

	w.RecordRun(2 * time.Second)

	h = w.Health()
	assert.False(t, h.Failing())
	assert.NoError(t, h.LastError)
	assert.Equal(t, int64(3), h.RunCount)
	assert.Equal(t, int64(2), h.ErrorCount)
	assert.Equal(t, 2*time.Second, h.AvgDuration)
}

func TestBaseWorker_SetEnabled(t *testing.T) {
	w := NewBaseWorker("agent_reconcile", time.Minute, true)
	w.SetEnabled(false)

	assert.False(t, w.Enabled())
	assert.False(t, w.Health().Enabled)
}
