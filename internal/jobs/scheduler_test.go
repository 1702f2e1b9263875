package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/autobuyer/internal/schedule"
	"github.com/terraincognita07/autobuyer/internal/services"
	"go.uber.org/zap"
)

type recordingRunner struct {
	mu      sync.Mutex
	calls   []time.Time
	targets []time.Time
	err     error
}

func (runner *recordingRunner) Run(_ context.Context, target, now time.Time) (services.RunReport, error) {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	runner.calls = append(runner.calls, now)
	runner.targets = append(runner.targets, target)
	return services.RunReport{RunID: "run-1", Due: 2, Sent: 1}, runner.err
}

func TestRunOnceUsesConfiguredLocation(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)

	runner := &recordingRunner{}
	scheduler := NewScheduler(runner, "0 7 * * *", zurich, zap.NewNop())
	// 23:30 UTC is already the next calendar day in Zurich.
	scheduler.now = func() time.Time { return time.Date(2024, time.June, 16, 23, 30, 0, 0, time.UTC) }

	report, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, zurich, runner.calls[0].Location())
	assert.Equal(t, 17, runner.calls[0].Day())
	assert.Equal(t, "2024-06-18", schedule.FormatDate(runner.targets[0]))
}

func TestRunRemindersSwallowsRunnerError(t *testing.T) {
	runner := &recordingRunner{err: errors.New("database locked")}
	scheduler := NewScheduler(runner, "@daily", nil, nil)

	assert.NotPanics(t, scheduler.runReminders)
	assert.Len(t, runner.calls, 1)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(&recordingRunner{}, "every morning", time.UTC, zap.NewNop())

	err := scheduler.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every morning")
}

func TestStartAndStop(t *testing.T) {
	scheduler := NewScheduler(&recordingRunner{}, "0 7 * * *", time.UTC, zap.NewNop())

	require.NoError(t, scheduler.Start())
	entries := scheduler.cron.Entries()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Next.IsZero())

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
