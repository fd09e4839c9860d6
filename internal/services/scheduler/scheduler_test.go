package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"iprofit/internal/services/loan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeLoans struct {
	calls int
	err   error
}

func (f *fakeLoans) SweepOverdue(context.Context) (loan.SweepResult, error) {
	f.calls++
	return loan.SweepResult{Overdue: 2}, f.err
}

type fakeSettings struct{ calls int }

func (f *fakeSettings) Refresh(context.Context) error {
	f.calls++
	return nil
}

type fakeWithdrawals struct{ age time.Duration }

func (f *fakeWithdrawals) StalePendingWithdrawals(_ context.Context, olderThan time.Duration) (int64, error) {
	f.age = olderThan
	return 4, nil
}

func newScheduler(t *testing.T, loans *fakeLoans) (*Scheduler, *observer.ObservedLogs, *fakeWithdrawals) {
	core, logs := observer.New(zap.DebugLevel)
	w := &fakeWithdrawals{}
	s, err := New(Jobs{Loans: loans, Settings: &fakeSettings{}, Withdrawals: w}, time.Minute, zap.New(core))
	require.NoError(t, err)
	return s, logs, w
}

func TestNewRegistersJobs(t *testing.T) {
	s, _, _ := newScheduler(t, &fakeLoans{})
	assert.Len(t, s.cron.Entries(), 3)
}

func TestNewRequiresJobs(t *testing.T) {
	_, err := New(Jobs{}, time.Minute, nil)
	assert.Error(t, err)
}

func TestStaleWithdrawalReportLogsCount(t *testing.T) {
	s, logs, w := newScheduler(t, &fakeLoans{})
	s.wrap(JobStaleWithdrawals, s.reportStaleWithdrawals)()

	assert.Equal(t, StaleAfter, w.age)
	entries := logs.FilterMessage("stale pending withdrawals").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(4), entries[0].ContextMap()["count"])
}

func TestFailedJobIsLogged(t *testing.T) {
	loans := &fakeLoans{err: errors.New("db gone")}
	s, logs, _ := newScheduler(t, loans)
	s.wrap(JobLoanSweep, s.sweepLoans)()

	assert.Equal(t, 1, loans.calls)
	assert.Equal(t, 1, logs.FilterMessage("job failed").Len())
}

func TestStopWithoutStart(t *testing.T) {
	s, _, _ := newScheduler(t, &fakeLoans{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
