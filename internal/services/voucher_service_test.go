package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type VoucherServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *VoucherServiceImpl
	member  *models.Member
	target  *models.Transaction
}

func TestVoucherService(t *testing.T) {
	suite.Run(t, new(VoucherServiceSuite))
}

func (s *VoucherServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewVoucherService(newTestParams(&s.BaseServiceTestSuite))
	s.member = s.CreateMember(models.MemberTierSilver)
	s.target = s.CreateTransaction(s.member.ID, "RCPT-TARGET", 500_000)
}

func (s *VoucherServiceSuite) TestValidateVoucher() {
	active := s.CreateVoucher(s.member.ID, "VCH-20250115-VALID", s.GetNow().Add(time.Hour))
	stale := s.CreateVoucher(s.member.ID, "VCH-20250115-STALE", s.GetNow().Add(-time.Minute))
	boundary := s.CreateVoucher(s.member.ID, "VCH-20250115-EDGE1", s.GetNow())
	used := s.CreateVoucher(s.member.ID, "VCH-20250115-USED1", s.GetNow().Add(time.Hour))
	_, err := s.service.RedeemVoucher(s.GetContext(), used.Code, s.target.ID, "admin-1")
	s.Require().NoError(err)

	testCases := []struct {
		name      string
		code      string
		wantValid bool
	}{
		{name: "active", code: active.Code, wantValid: true},
		{name: "lowercase_input", code: " vch-20250115-valid ", wantValid: true},
		{name: "expired_but_still_active", code: stale.Code, wantValid: false},
		{name: "expiry_instant", code: boundary.Code, wantValid: false},
		{name: "used", code: used.Code, wantValid: false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			result, err := s.service.ValidateVoucher(s.GetContext(), tc.code)
			s.Require().NoError(err)
			s.Equal(tc.wantValid, result.Valid)
			s.NotEmpty(result.Reason)
			s.NotNil(result.Voucher)
		})
	}

	_, err = s.service.ValidateVoucher(s.GetContext(), "VCH-00000000-NOPE0")
	s.True(ierr.IsNotFound(err))
}

func (s *VoucherServiceSuite) TestRedeemVoucher() {
	v := s.CreateVoucher(s.member.ID, "VCH-20250115-REDM1", s.GetNow().Add(time.Hour))

	redeemed, err := s.service.RedeemVoucher(s.GetContext(), v.Code, s.target.ID, "admin-1")
	s.Require().NoError(err)
	s.Equal(models.VoucherStatusUsed, redeemed.Status)
	s.Equal(s.target.ID, lo.FromPtr(redeemed.UsedTransactionID))
	s.Require().NotNil(redeemed.UsedAt)
	s.Equal(s.GetNow(), *redeemed.UsedAt)

	logs, err := s.service.ListVoucherLogs(s.GetContext(), v.ID)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(models.VoucherActionUsed, logs[0].Action)
	s.Contains(logs[0].Note, "RCPT-TARGET")

	_, err = s.service.RedeemVoucher(s.GetContext(), v.Code, s.target.ID, "admin-1")
	s.True(ierr.IsInvalidState(err))
}

func (s *VoucherServiceSuite) TestRedeemFailures() {
	expired := s.CreateVoucher(s.member.ID, "VCH-20250115-EXPD1", s.GetNow().Add(-time.Second))
	fresh := s.CreateVoucher(s.member.ID, "VCH-20250115-FRSH1", s.GetNow().Add(time.Hour))
	cancelled := s.CreateVoucher(s.member.ID, "VCH-20250115-CNCL1", s.GetNow().Add(time.Hour))
	_, err := s.service.CancelVoucher(s.GetContext(), cancelled.ID, "admin-1", "")
	s.Require().NoError(err)

	testCases := []struct {
		name   string
		code   string
		target string
		checkFn func(error) bool
	}{
		{name: "unknown_code", code: "VCH-20250115-NONE0", target: s.target.ID, checkFn: ierr.IsNotFound},
		{name: "expired", code: expired.Code, target: s.target.ID, checkFn: ierr.IsExpired},
		{name: "cancelled", code: cancelled.Code, target: s.target.ID, checkFn: ierr.IsInvalidState},
		{name: "unknown_target", code: fresh.Code, target: "txn_missing", checkFn: ierr.IsNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			v, err := s.service.RedeemVoucher(s.GetContext(), tc.code, tc.target, "admin-1")
			s.Nil(v)
			s.True(tc.checkFn(err), "unexpected error kind: %v", err)
		})
	}

	stored, err := s.service.GetVoucher(s.GetContext(), fresh.ID)
	s.Require().NoError(err)
	s.Equal(models.VoucherStatusActive, stored.Status, "failed redemption must not change state")
}

func (s *VoucherServiceSuite) TestConcurrentRedeemSucceedsOnce() {
	v := s.CreateVoucher(s.member.ID, "VCH-20250115-RACE1", s.GetNow().Add(time.Hour))

	var succeeded, invalid atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := s.service.RedeemVoucher(ctx, v.Code, s.target.ID, "admin-1")
			switch {
			case err == nil:
				succeeded.Add(1)
			case ierr.IsInvalidState(err):
				invalid.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(7), invalid.Load())

	logs, err := s.service.ListVoucherLogs(s.GetContext(), v.ID)
	s.Require().NoError(err)
	s.Len(logs, 1)
}

func (s *VoucherServiceSuite) TestStaleRedeemReadLosesOnTransition() {
	v := s.CreateVoucher(s.member.ID, "VCH-20250115-STALE2", s.GetNow().Add(time.Hour))

	params := newTestParams(&s.BaseServiceTestSuite)
	stores := s.GetStores()
	stores.Vouchers = testutil.NewStaleVoucherStore(stores.Vouchers)
	params.Stores = stores
	service := NewVoucherService(params)
	conflicts := s.GetMetrics().Conflicts.WithLabelValues("redeem_voucher")
	before := promtest.ToFloat64(conflicts)

	_, err := service.RedeemVoucher(s.GetContext(), v.Code, s.target.ID, "admin-1")
	s.Require().NoError(err)

	// the lookup still reports ACTIVE, only the status update notices
	_, err = service.RedeemVoucher(s.GetContext(), v.Code, s.target.ID, "admin-2")
	s.Require().Error(err)
	s.True(ierr.IsInvalidState(err), "unexpected error kind: %v", err)
	s.Equal("Voucher was redeemed or changed by another request", ierr.Hint(err, ""))
	s.Equal(before+1, promtest.ToFloat64(conflicts))

	stored, err := s.GetStores().Vouchers.FindByID(s.GetContext(), v.ID)
	s.Require().NoError(err)
	s.Equal(models.VoucherStatusUsed, stored.Status)

	logs, err := s.service.ListVoucherLogs(s.GetContext(), v.ID)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(models.VoucherActionUsed, logs[0].Action)
	s.Equal("admin-1", lo.FromPtr(logs[0].AdminID))
}

func (s *VoucherServiceSuite) TestCancelVoucher() {
	v := s.CreateVoucher(s.member.ID, "VCH-20250115-CANC1", s.GetNow().Add(time.Hour))

	cancelled, err := s.service.CancelVoucher(s.GetContext(), v.ID, "admin-2", "")
	s.Require().NoError(err)
	s.Equal(models.VoucherStatusCancelled, cancelled.Status)

	logs, err := s.service.ListVoucherLogs(s.GetContext(), v.ID)
	s.Require().NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(models.VoucherActionCancelled, logs[0].Action)
	s.Equal("cancelled by admin", logs[0].Note)
	s.Equal("admin-2", lo.FromPtr(logs[0].AdminID))

	_, err = s.service.CancelVoucher(s.GetContext(), v.ID, "admin-2", "again")
	s.True(ierr.IsInvalidState(err))
	s.Equal("Voucher has already been cancelled", ierr.Hint(err, ""))

	used := s.CreateVoucher(s.member.ID, "VCH-20250115-CANC2", s.GetNow().Add(time.Hour))
	_, err = s.service.RedeemVoucher(s.GetContext(), used.Code, s.target.ID, "admin-1")
	s.Require().NoError(err)
	_, err = s.service.CancelVoucher(s.GetContext(), used.ID, "admin-2", "customer request")
	s.True(ierr.IsInvalidState(err))
	s.Contains(ierr.Hint(err, ""), "already been redeemed")

	_, err = s.service.CancelVoucher(s.GetContext(), "vch_missing", "admin-2", "")
	s.True(ierr.IsNotFound(err))
}

func (s *VoucherServiceSuite) TestSweepExpiredVouchers() {
	now := s.GetNow()
	for i, offset := range []time.Duration{-48 * time.Hour, -time.Hour, -time.Second} {
		s.CreateVoucher(s.member.ID, "VCH-20250115-OLD0"+string(rune('1'+i)), now.Add(offset))
	}
	fresh := s.CreateVoucher(s.member.ID, "VCH-20250115-NEW01", now.Add(time.Hour))
	atExpiry := s.CreateVoucher(s.member.ID, "VCH-20250115-NOW01", now)

	s.service.SweepBatch = 2
	count, err := s.service.SweepExpiredVouchers(s.GetContext(), now)
	s.Require().NoError(err)
	s.Equal(3, count)

	again, err := s.service.SweepExpiredVouchers(s.GetContext(), now)
	s.Require().NoError(err)
	s.Zero(again, "sweep must be idempotent")

	expired, err := s.service.ListVouchersByMember(s.GetContext(), s.member.ID, models.VoucherStatusExpired, 1, 10)
	s.Require().NoError(err)
	s.Len(expired, 3)
	for _, v := range expired {
		logs, err := s.service.ListVoucherLogs(s.GetContext(), v.ID)
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Equal(models.VoucherActionExpired, logs[0].Action)
	}

	for _, v := range []*models.Voucher{fresh, atExpiry} {
		stored, err := s.service.GetVoucher(s.GetContext(), v.ID)
		s.Require().NoError(err)
		s.Equal(models.VoucherStatusActive, stored.Status)
	}

	events := s.GetPublisher().Events(publisher.EventVoucherExpired)
	s.Require().Len(events, 3)
	for _, e := range events {
		payload, ok := e.Payload.(*models.Voucher)
		s.Require().True(ok, "payload is %T", e.Payload)
		s.Equal(e.AggregateID, payload.ID)
		s.Equal(models.VoucherStatusExpired, payload.Status)
		s.Equal(now, payload.UpdatedAt)
	}

	_, err = s.service.CancelVoucher(s.GetContext(), expired[0].ID, "admin-1", "")
	s.True(ierr.IsInvalidState(err), "expired vouchers cannot be cancelled")
}
