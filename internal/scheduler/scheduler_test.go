package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/engine"
)

type fakeUpdateRunner struct {
	calls int
	cfg   engine.UpdateConfig
	err   error
}

func (f *fakeUpdateRunner) Run(ctx context.Context, cfg engine.UpdateConfig) (*engine.UpdateReport, error) {
	f.calls++
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &engine.UpdateReport{DatesProcessed: 2, GamesProcessed: 5}, nil
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshAvailability(ctx context.Context) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 12, nil
}

func quietLog() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&fakeUpdateRunner{}, &fakeRefresher{}, quietLog())

	require.NoError(t, s.ScheduleUpdate("30 4 * * *"))
	require.NoError(t, s.ScheduleAvailabilityRefresh("0 */6 * * *"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	next := s.GetNextRun()
	require.False(t, next.IsZero())
	assert.True(t, next.After(time.Now().Add(-time.Minute)))

	// Jobs cannot be added or restarted mid-flight
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleUpdate("0 5 * * *"))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	s := NewScheduler(&fakeUpdateRunner{}, &fakeRefresher{}, quietLog())

	assert.Error(t, s.ScheduleUpdate("not a cron line"))
	assert.Error(t, s.ScheduleAvailabilityRefresh("61 4 * * *"))
}

func TestSchedulerStartWithoutJobs(t *testing.T) {
	s := NewScheduler(&fakeUpdateRunner{}, &fakeRefresher{}, quietLog())
	assert.Error(t, s.Start())
}

func TestScheduledJobsDriveThePipelines(t *testing.T) {
	update := &fakeUpdateRunner{}
	refresher := &fakeRefresher{}
	s := NewScheduler(update, refresher, quietLog())

	require.NoError(t, s.ScheduleUpdate("30 4 * * *"))
	require.NoError(t, s.ScheduleAvailabilityRefresh("0 */6 * * *"))

	entries := s.Entries()
	require.Len(t, entries, 2)

	// Fire both jobs synchronously
	for _, entry := range entries {
		entry.Job.Run()
	}

	assert.Equal(t, 1, update.calls)
	assert.Equal(t, engine.UpdateConfig{}, update.cfg)
	assert.Equal(t, 1, refresher.calls)
}

func TestScheduledJobsSurviveFailures(t *testing.T) {
	update := &fakeUpdateRunner{err: errors.New("feed down")}
	refresher := &fakeRefresher{err: errors.New("feed down")}
	s := NewScheduler(update, refresher, quietLog())

	require.NoError(t, s.ScheduleUpdate("30 4 * * *"))
	require.NoError(t, s.ScheduleAvailabilityRefresh("0 */6 * * *"))

	for _, entry := range s.Entries() {
		assert.NotPanics(t, func() { entry.Job.Run() })
	}

	assert.Equal(t, 1, update.calls)
	assert.Equal(t, 1, refresher.calls)
}
