package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(ctx context.Context) error {
	w.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("warm must run with a deadline")
	}
	return w.err
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler("every five minutes", &countingWarmer{}, zap.NewNop())
	require.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler("*/5 * * * *", &countingWarmer{}, zap.NewNop())
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestWarmDashboardSwallowsErrors(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("db down")}
	s := NewScheduler("@every 1h", warmer, zap.NewNop())

	s.warmDashboard()
	s.warmDashboard()

	assert.Equal(t, int32(2), warmer.calls.Load())
}
