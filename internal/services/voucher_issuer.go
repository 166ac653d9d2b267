package services

import (
	"context"
	"fmt"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/samber/lo"
)

// VoucherIssuerImpl persists vouchers and their CREATED log entries
type VoucherIssuerImpl struct {
	ServiceParams
}

var _ VoucherIssuer = (*VoucherIssuerImpl)(nil)

// NewVoucherIssuer creates a new voucher issuer
func NewVoucherIssuer(params ServiceParams) *VoucherIssuerImpl {
	return &VoucherIssuerImpl{ServiceParams: params.withDefaults()}
}

func (s *VoucherIssuerImpl) Issue(ctx context.Context, txn *models.Transaction, adminID string, plans []*models.VoucherPlan) ([]*models.Voucher, error) {
	now := s.now()
	total := lo.SumBy(plans, func(p *models.VoucherPlan) int { return p.Count })
	if total < 0 || total > s.maxVouchers() {
		return nil, ierr.NewError("voucher count out of range").
			WithHintf("A transaction may earn at most %d vouchers", s.maxVouchers()).
			WithReportableDetails(map[string]any{"vouchers": total, "limit": s.maxVouchers()}).
			Mark(ierr.ErrValidation)
	}
	issued := make([]*models.Voucher, 0, total)

	for _, plan := range plans {
		for i := 0; i < plan.Count; i++ {
			code, err := s.uniqueCode(ctx, now)
			if err != nil {
				return nil, err
			}
			lottery, err := s.Codes.LotteryNumber()
			if err != nil {
				return nil, ierr.WithError(err).
					WithHint("Could not generate a lottery number").
					Mark(ierr.ErrSystem)
			}

			voucher := &models.Voucher{
				ID:            models.GenerateID(models.IDPrefixVoucher),
				Code:          code,
				LotteryNumber: lo.ToPtr(lottery),
				MemberID:      txn.MemberID,
				TransactionID: txn.ID,
				RuleID:        plan.RuleID,
				Value:         plan.VoucherValue,
				Status:        models.VoucherStatusActive,
				ExpiresAt:     now.AddDate(0, 0, plan.ValidityDays),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.Vouchers.Create(ctx, voucher); err != nil {
				return nil, err
			}

			entry := &models.VoucherLog{
				ID:        models.GenerateID(models.IDPrefixVoucherLog),
				VoucherID: voucher.ID,
				Action:    models.VoucherActionCreated,
				AdminID:   optionalString(adminID),
				Note:      fmt.Sprintf("created from transaction %s", txn.ReceiptCode),
				CreatedAt: now,
			}
			if err := s.VoucherLogs.Create(ctx, entry); err != nil {
				return nil, err
			}
			issued = append(issued, voucher)
		}
	}
	return issued, nil
}

// uniqueCode draws codes until one is unused. The code date is the store's
// calendar day, not UTC. Running out of attempts is an
// integrity failure that aborts the enclosing unit of work.
func (s *VoucherIssuerImpl) uniqueCode(ctx context.Context, now time.Time) (string, error) {
	attempts := s.retryAttempts()
	for i := 0; i < attempts; i++ {
		code, err := s.Codes.VoucherCode(now.In(s.location()))
		if err != nil {
			return "", ierr.WithError(err).
				WithHint("Could not generate a voucher code").
				Mark(ierr.ErrSystem)
		}
		exists, err := s.Vouchers.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		s.Logger.Warnw("voucher code collision, regenerating", "code", code, "attempt", i+1)
	}
	return "", ierr.NewError("voucher code retry budget exhausted").
		WithHint("Could not generate a unique voucher code, please retry").
		WithReportableDetails(map[string]any{"attempts": attempts}).
		Mark(ierr.ErrIntegrity)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
