package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"github.com/ArowuTest/retail-loyalty-backend/internal/utils"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultSweepBatch  = 500
	defaultCancelNote  = "cancelled by admin"
	expiredSweepNote   = "expired by scheduled sweep"
	reasonVoucherValid = "voucher is valid"
)

// VoucherServiceImpl implements the voucher state machine:
// ACTIVE -> USED | CANCELLED | EXPIRED, never back.
type VoucherServiceImpl struct {
	ServiceParams
	SweepBatch int
}

var _ VoucherService = (*VoucherServiceImpl)(nil)

// NewVoucherService creates a new voucher service
func NewVoucherService(params ServiceParams) *VoucherServiceImpl {
	return &VoucherServiceImpl{ServiceParams: params.withDefaults(), SweepBatch: defaultSweepBatch}
}

// ValidateVoucher is read-only. A voucher past its expiry is reported invalid
// even while its stored status is still ACTIVE.
func (s *VoucherServiceImpl) ValidateVoucher(ctx context.Context, code string) (*models.VoucherValidation, error) {
	voucher, err := s.Vouchers.FindByCode(ctx, utils.NormalizeVoucherCode(code))
	if err != nil {
		return nil, err
	}

	result := &models.VoucherValidation{Voucher: voucher}
	switch {
	case voucher.Status != models.VoucherStatusActive:
		result.Reason = statusReason(voucher.Status)
	case voucher.ExpiredAt(s.now()):
		result.Reason = fmt.Sprintf("voucher expired on %s", voucher.ExpiresAt.In(s.location()).Format("2006-01-02 15:04"))
	default:
		result.Valid = true
		result.Reason = reasonVoucherValid
	}
	return result, nil
}

func statusReason(status models.VoucherStatus) string {
	switch status {
	case models.VoucherStatusUsed:
		return "voucher has already been redeemed"
	case models.VoucherStatusExpired:
		return "voucher has expired"
	case models.VoucherStatusCancelled:
		return "voucher has been cancelled"
	default:
		return fmt.Sprintf("voucher is %s", strings.ToLower(string(status)))
	}
}

// RedeemVoucher spends an ACTIVE, unexpired voucher against an existing
// transaction. The checks and the status change run in one unit of work and
// the change itself is a compare-and-set on ACTIVE, so of two concurrent
// redemptions exactly one wins.
func (s *VoucherServiceImpl) RedeemVoucher(ctx context.Context, code, targetTransactionID, adminID string) (*models.Voucher, error) {
	ctx, span := tracing.Tracer().Start(ctx, "VoucherService.RedeemVoucher")
	defer span.End()
	span.SetAttributes(attribute.String("voucher.code", code), attribute.String("transaction.id", targetTransactionID))

	var redeemed *models.Voucher
	now := s.now()
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		voucher, err := s.Vouchers.FindByCode(ctx, utils.NormalizeVoucherCode(code))
		if err != nil {
			return err
		}
		if voucher.Status != models.VoucherStatusActive {
			return invalidVoucherState(voucher, statusReason(voucher.Status))
		}
		if voucher.ExpiredAt(now) {
			return ierr.NewError("voucher expired").
				WithHintf("Voucher expired on %s", voucher.ExpiresAt.In(s.location()).Format("2006-01-02 15:04")).
				WithReportableDetails(map[string]any{"voucher_id": voucher.ID, "expires_at": voucher.ExpiresAt}).
				Mark(ierr.ErrExpired)
		}

		target, err := s.Transactions.FindByID(ctx, targetTransactionID)
		if err != nil {
			return err
		}

		ok, err := s.Vouchers.TransitionStatus(ctx, voucher.ID, models.VoucherStatusChange{
			From:              models.VoucherStatusActive,
			To:                models.VoucherStatusUsed,
			At:                now,
			UsedTransactionID: &target.ID,
		})
		if err != nil {
			return err
		}
		if !ok {
			s.Metrics.Conflicts.WithLabelValues("redeem_voucher").Inc()
			return invalidVoucherState(voucher, "voucher was redeemed or changed by another request")
		}

		if err := s.appendLog(ctx, voucher.ID, models.VoucherActionUsed, adminID,
			fmt.Sprintf("used on transaction %s", target.ReceiptCode), now); err != nil {
			return err
		}

		redeemed, err = s.Vouchers.FindByID(ctx, voucher.ID)
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.VoucherTransitions.WithLabelValues(string(models.VoucherActionUsed)).Inc()
	s.publish(ctx, publisher.NewEvent(publisher.EventVoucherRedeemed, redeemed.ID, now, redeemed))
	s.Logger.Infow("voucher redeemed", "voucher_id", redeemed.ID, "transaction_id", targetTransactionID, "admin_id", adminID)
	return redeemed, nil
}

// CancelVoucher moves an ACTIVE voucher to CANCELLED
func (s *VoucherServiceImpl) CancelVoucher(ctx context.Context, id, adminID, note string) (*models.Voucher, error) {
	ctx, span := tracing.Tracer().Start(ctx, "VoucherService.CancelVoucher")
	defer span.End()

	if strings.TrimSpace(note) == "" {
		note = defaultCancelNote
	}

	var cancelled *models.Voucher
	now := s.now()
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		voucher, err := s.Vouchers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		switch voucher.Status {
		case models.VoucherStatusUsed:
			return invalidVoucherState(voucher, "voucher has already been redeemed and cannot be cancelled")
		case models.VoucherStatusCancelled:
			return invalidVoucherState(voucher, "voucher has already been cancelled")
		case models.VoucherStatusExpired:
			return invalidVoucherState(voucher, "voucher has expired and cannot be cancelled")
		}

		ok, err := s.Vouchers.TransitionStatus(ctx, voucher.ID, models.VoucherStatusChange{
			From: models.VoucherStatusActive,
			To:   models.VoucherStatusCancelled,
			At:   now,
		})
		if err != nil {
			return err
		}
		if !ok {
			s.Metrics.Conflicts.WithLabelValues("cancel_voucher").Inc()
			return invalidVoucherState(voucher, "voucher was changed by another request")
		}

		if err := s.appendLog(ctx, voucher.ID, models.VoucherActionCancelled, adminID, note, now); err != nil {
			return err
		}

		cancelled, err = s.Vouchers.FindByID(ctx, voucher.ID)
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.VoucherTransitions.WithLabelValues(string(models.VoucherActionCancelled)).Inc()
	s.publish(ctx, publisher.NewEvent(publisher.EventVoucherCancelled, cancelled.ID, now, cancelled))
	s.Logger.Infow("voucher cancelled", "voucher_id", cancelled.ID, "admin_id", adminID)
	return cancelled, nil
}

// SweepExpiredVouchers moves every ACTIVE voucher with expiry before now to
// EXPIRED, one unit of work per voucher. Vouchers that changed state in the
// meantime are skipped, so a second run right after the first changes nothing.
func (s *VoucherServiceImpl) SweepExpiredVouchers(ctx context.Context, now time.Time) (int, error) {
	ctx, span := tracing.Tracer().Start(ctx, "VoucherService.SweepExpiredVouchers")
	defer span.End()

	batch := s.SweepBatch
	if batch <= 0 {
		batch = defaultSweepBatch
	}

	expired := 0
	for {
		candidates, err := s.Vouchers.FindExpirable(ctx, now, batch)
		if err != nil {
			tracing.RecordError(span, err)
			return expired, err
		}
		if len(candidates) == 0 {
			break
		}

		progressed := 0
		for _, voucher := range candidates {
			var moved bool
			err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
				ok, err := s.Vouchers.TransitionStatus(ctx, voucher.ID, models.VoucherStatusChange{
					From: models.VoucherStatusActive,
					To:   models.VoucherStatusExpired,
					At:   now,
				})
				if err != nil || !ok {
					return err
				}
				moved = true
				return s.appendLog(ctx, voucher.ID, models.VoucherActionExpired, "", expiredSweepNote, now)
			})
			if err != nil {
				tracing.RecordError(span, err)
				return expired, err
			}
			if moved {
				expired++
				progressed++
				voucher.Status = models.VoucherStatusExpired
				voucher.UpdatedAt = now
				s.publish(ctx, publisher.NewEvent(publisher.EventVoucherExpired, voucher.ID, now, voucher))
			}
		}

		if progressed == 0 || len(candidates) < batch {
			break
		}
	}

	s.Metrics.VoucherTransitions.WithLabelValues(string(models.VoucherActionExpired)).Add(float64(expired))
	span.SetAttributes(attribute.Int("vouchers.expired", expired))
	s.Logger.Infow("expired vouchers swept", "count", expired, "now", now)
	return expired, nil
}

func (s *VoucherServiceImpl) GetVoucher(ctx context.Context, id string) (*models.Voucher, error) {
	return s.Vouchers.FindByID(ctx, id)
}

func (s *VoucherServiceImpl) ListVouchersByMember(ctx context.Context, memberID string, status models.VoucherStatus, page, limit int) ([]*models.Voucher, error) {
	if _, err := s.Members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.Vouchers.FindAll(ctx, models.VoucherFilter{
		MemberID: memberID,
		Status:   status,
		Page:     page,
		Limit:    limit,
	})
}

func (s *VoucherServiceImpl) ListVoucherLogs(ctx context.Context, voucherID string) ([]*models.VoucherLog, error) {
	if _, err := s.Vouchers.FindByID(ctx, voucherID); err != nil {
		return nil, err
	}
	return s.VoucherLogs.FindByVoucherID(ctx, voucherID)
}

func (s *VoucherServiceImpl) appendLog(ctx context.Context, voucherID string, action models.VoucherAction, adminID, note string, at time.Time) error {
	return s.VoucherLogs.Create(ctx, &models.VoucherLog{
		ID:        models.GenerateID(models.IDPrefixVoucherLog),
		VoucherID: voucherID,
		Action:    action,
		AdminID:   optionalString(adminID),
		Note:      note,
		CreatedAt: at,
	})
}

func invalidVoucherState(v *models.Voucher, reason string) error {
	return ierr.NewError("voucher not in a usable state").
		WithHint(capitalize(reason)).
		WithReportableDetails(map[string]any{"voucher_id": v.ID, "status": v.Status}).
		Mark(ierr.ErrInvalidState)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
