package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/lock"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	calls int
	at    time.Time
	count int
	err   error
}

func (f *fakeSweeper) SweepExpiredVouchers(_ context.Context, now time.Time) (int, error) {
	f.calls++
	f.at = now
	return f.count, f.err
}

func newJob(sweeper *fakeSweeper, locker lock.Locker, now time.Time) *ExpireVouchers {
	return &ExpireVouchers{
		Sweeper: sweeper,
		Locker:  locker,
		Logger:  logger.NewNop(),
		Enabled: true,
		Now:     func() time.Time { return now },
	}
}

func TestExpireVouchersSweepsAtNow(t *testing.T) {
	now := time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC)
	sweeper := &fakeSweeper{count: 4}
	locker := lock.NewLocalLocker()
	job := newJob(sweeper, locker, now)

	require.NoError(t, job.Do(context.Background()))
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, now, sweeper.at)
	assert.Equal(t, "0 * * * *", job.Spec())

	// the lock is released after the run
	release, err := locker.Acquire(context.Background(), job.Name(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
}

func TestExpireVouchersSkipsWhenLockHeld(t *testing.T) {
	sweeper := &fakeSweeper{}
	locker := lock.NewLocalLocker()
	job := newJob(sweeper, locker, time.Now())

	release, err := locker.Acquire(context.Background(), job.Name(), time.Minute)
	require.NoError(t, err)
	defer release(context.Background())

	require.NoError(t, job.Do(context.Background()))
	assert.Zero(t, sweeper.calls)
}

func TestExpireVouchersReportsSweepFailure(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("store unavailable")}
	job := newJob(sweeper, lock.NewLocalLocker(), time.Now())

	assert.EqualError(t, job.Do(context.Background()), "store unavailable")
}

func TestSchedulerRegister(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(time.UTC, logger.NewNop(), m)
	ctx := context.Background()

	disabled := newJob(&fakeSweeper{}, lock.NewLocalLocker(), time.Now())
	disabled.Enabled = false
	require.NoError(t, s.Register(ctx, disabled))
	assert.Empty(t, s.Jobs())

	broken := newJob(&fakeSweeper{}, lock.NewLocalLocker(), time.Now())
	broken.Schedule = "every minute"
	assert.Error(t, s.Register(ctx, broken))

	sweeper := &fakeSweeper{count: 1}
	job := newJob(sweeper, lock.NewLocalLocker(), time.Now())
	job.Schedule = "*/5 * * * *"
	require.NoError(t, s.Register(ctx, job))
	require.Len(t, s.Jobs(), 1)

	s.run(ctx, job)
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.JobRuns.WithLabelValues("voucher.expire", "ok")))

	sweeper.err = errors.New("boom")
	s.run(ctx, job)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.JobRuns.WithLabelValues("voucher.expire", "error")))
}

func TestSchedulerRunStopsWithContext(t *testing.T) {
	s := New(time.UTC, logger.NewNop(), metrics.New(prometheus.NewRegistry()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
