package scheduler

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewScheduler(nil, nil, nil, log)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.ScheduleProgramFetch("0 8 * * *"))
	require.NoError(t, s.ScheduleResultsFetch("0 22 * * *"))
	require.NoError(t, s.ScheduleDailyReport("30 22 * * *"))

	assert.False(t, s.IsRunning())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.False(t, s.GetNextRun().IsZero())
	assert.Len(t, s.Entries(), 3)

	// Jobs cannot be added to a running scheduler.
	assert.Error(t, s.ScheduleProgramFetch("0 9 * * *"))
	assert.Error(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestSchedulerRejectsInvalidCron(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.ScheduleProgramFetch("not a cron"))
}

func TestSchedulerStartWithoutJobs(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start())
}
