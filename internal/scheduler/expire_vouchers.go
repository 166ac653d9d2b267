package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/lock"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
)

var _ Job = (*ExpireVouchers)(nil)

// VoucherSweeper is the part of the voucher service the job drives
type VoucherSweeper interface {
	SweepExpiredVouchers(ctx context.Context, now time.Time) (int, error)
}

// ExpireVouchers moves overdue ACTIVE vouchers to EXPIRED. Only one instance
// runs a sweep at a time; the others skip the tick.
type ExpireVouchers struct {
	Sweeper  VoucherSweeper
	Locker   lock.Locker
	Logger   *logger.Logger
	Schedule string
	Enabled  bool
	LockTTL  time.Duration
	Now      func() time.Time
}

func (j *ExpireVouchers) Name() string {
	return "voucher.expire"
}

func (j *ExpireVouchers) Spec() string {
	if j.Schedule == "" {
		return "0 * * * *"
	}
	return j.Schedule
}

func (j *ExpireVouchers) Enable() bool {
	return j.Enabled
}

func (j *ExpireVouchers) Do(ctx context.Context) error {
	ttl := j.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	release, err := j.Locker.Acquire(ctx, j.Name(), ttl)
	if errors.Is(err, lock.ErrNotAcquired) {
		j.Logger.Debugw("voucher expiry sweep already running elsewhere")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			j.Logger.Warnw("failed to release sweep lock", "error", err)
		}
	}()

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	count, err := j.Sweeper.SweepExpiredVouchers(ctx, now())
	if err != nil {
		j.Logger.Errorw("voucher expiry sweep failed", "error", err, "expired_count", count)
		return err
	}
	if count > 0 {
		j.Logger.Infow("voucher expiry sweep finished", "expired_count", count)
	}
	return nil
}
