// Package scheduler runs the periodic maintenance jobs on a cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"iprofit/internal/logger"
	"iprofit/internal/metrics"
	"iprofit/internal/services/loan"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job names, also used as metric labels.
const (
	JobLoanSweep        = "loan_overdue_sweep"
	JobSettingsRefresh  = "settings_refresh"
	JobStaleWithdrawals = "stale_withdrawals"
)

// StaleAfter is the age at which a pending withdrawal is reported.
const StaleAfter = 24 * time.Hour

// Specs for the fixed jobs.
const (
	loanSweepSpec        = "@hourly"
	staleWithdrawalsSpec = "0 6 * * *"
)

type LoanSweeper interface {
	SweepOverdue(ctx context.Context) (loan.SweepResult, error)
}

type SettingsRefresher interface {
	Refresh(ctx context.Context) error
}

type WithdrawalCounter interface {
	StalePendingWithdrawals(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Jobs are the services the scheduler drives.
type Jobs struct {
	Loans       LoanSweeper
	Settings    SettingsRefresher
	Withdrawals WithdrawalCounter
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration
	log     *zap.Logger
}

// New registers the jobs. settingsTTL sets the settings refresh interval.
func New(jobs Jobs, settingsTTL time.Duration, log *zap.Logger) (*Scheduler, error) {
	if jobs.Loans == nil || jobs.Settings == nil || jobs.Withdrawals == nil {
		return nil, fmt.Errorf("scheduler: every job service is required")
	}
	if settingsTTL <= 0 {
		settingsTTL = 5 * time.Minute
	}
	log = logger.OrNop(log).Named("scheduler")
	cl := cronLogger{log.Sugar()}

	s := &Scheduler{
		cron: cron.New(cron.WithLogger(cl), cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		jobs:    jobs,
		timeout: 10 * time.Minute,
		log:     log,
	}

	specs := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{loanSweepSpec, JobLoanSweep, s.sweepLoans},
		{fmt.Sprintf("@every %s", settingsTTL), JobSettingsRefresh, jobs.Settings.Refresh},
		{staleWithdrawalsSpec, JobStaleWithdrawals, s.reportStaleWithdrawals},
	}
	for _, j := range specs {
		if _, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.run)); err != nil {
			return nil, fmt.Errorf("scheduler: failed to add %s: %w", j.name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop halts the cron and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
}

// wrap gives each run its own deadline and records the outcome.
func (s *Scheduler) wrap(name string, run func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := run(ctx)
		metrics.RecordJob(name, err, time.Since(start))
		if err != nil {
			s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		}
	}
}

func (s *Scheduler) sweepLoans(ctx context.Context) error {
	res, err := s.jobs.Loans.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("loan sweep done", zap.Int("overdue", res.Overdue), zap.Int("defaulted", res.Defaulted))
	return nil
}

func (s *Scheduler) reportStaleWithdrawals(ctx context.Context) error {
	n, err := s.jobs.Withdrawals.StalePendingWithdrawals(ctx, StaleAfter)
	if err != nil {
		return err
	}
	s.log.Info("stale pending withdrawals",
		zap.Int64("count", n),
		zap.Duration("older_than", StaleAfter))
	return nil
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
