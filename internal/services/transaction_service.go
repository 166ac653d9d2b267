package services

import (
	"context"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// TransactionServiceImpl records purchases together with their vouchers
type TransactionServiceImpl struct {
	ServiceParams
	evaluator RuleEvaluator
	issuer    VoucherIssuer
}

var _ TransactionService = (*TransactionServiceImpl)(nil)

// NewTransactionService creates a new transaction service
func NewTransactionService(params ServiceParams, evaluator RuleEvaluator, issuer VoucherIssuer) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		ServiceParams: params.withDefaults(),
		evaluator:     evaluator,
		issuer:        issuer,
	}
}

// RecordTransaction stores the purchase, evaluates the active rule and issues
// the earned vouchers as one unit of work. Nothing is kept if any step fails.
func (s *TransactionServiceImpl) RecordTransaction(ctx context.Context, req *models.RecordTransactionRequest) (*models.TransactionResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "TransactionService.RecordTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", req.MemberID), attribute.String("receipt.code", req.ReceiptCode))

	if err := validateTransactionRequest(req, s.maxAmount()); err != nil {
		return nil, err
	}

	now := s.now()
	purchasedAt := now
	if req.PurchasedAt != nil {
		purchasedAt = *req.PurchasedAt
	}

	var result *models.TransactionResult
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		member, err := s.Members.FindByID(ctx, req.MemberID)
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			ID:          models.GenerateID(models.IDPrefixTransaction),
			ReceiptCode: strings.TrimSpace(req.ReceiptCode),
			MemberID:    member.ID,
			Amount:      req.Amount,
			PurchasedAt: purchasedAt,
			Purchase: models.PurchaseContext{
				Brand:          strings.TrimSpace(req.Brand),
				CollectionName: strings.TrimSpace(req.CollectionName),
				CollectionYear: req.CollectionYear,
				Items:          req.Items,
			},
			Note:      req.Note,
			AdminID:   req.AdminID,
			CreatedAt: now,
		}
		if err := s.Transactions.Create(ctx, txn); err != nil {
			return err
		}

		purchase := txn.Purchase
		purchase.MemberTier = string(member.Tier)
		plans, err := s.evaluator.Evaluate(ctx, txn.Amount, purchasedAt, purchase)
		if err != nil {
			return err
		}

		vouchers, err := s.issuer.Issue(ctx, txn, req.AdminID, plans)
		if err != nil {
			return err
		}

		result = &models.TransactionResult{
			Transaction: txn,
			Vouchers:    vouchers,
			Plans:       plans,
		}
		return nil
	})
	if err != nil {
		if ierr.IsConflict(err) {
			s.Metrics.Conflicts.WithLabelValues("record_transaction").Inc()
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	s.Metrics.TransactionsRecorded.Inc()
	for _, plan := range result.Plans {
		s.Metrics.VouchersIssued.WithLabelValues(string(plan.RuleKind)).Add(float64(plan.Count))
	}

	events := []publisher.Event{publisher.NewEvent(publisher.EventTransactionRecorded, result.Transaction.ID, now, result.Transaction)}
	events = append(events, lo.Map(result.Vouchers, func(v *models.Voucher, _ int) publisher.Event {
		return publisher.NewEvent(publisher.EventVoucherIssued, v.ID, now, v)
	})...)
	s.publish(ctx, events...)

	s.Logger.Infow("transaction recorded",
		"transaction_id", result.Transaction.ID,
		"receipt_code", result.Transaction.ReceiptCode,
		"vouchers", len(result.Vouchers))
	return result, nil
}

func validateTransactionRequest(req *models.RecordTransactionRequest, maxAmount decimal.Decimal) error {
	if strings.TrimSpace(req.MemberID) == "" {
		return ierr.NewError("member id is required").
			WithHint("Member is required").
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(req.ReceiptCode) == "" {
		return ierr.NewError("receipt code is required").
			WithHint("Receipt code is required").
			Mark(ierr.ErrValidation)
	}
	if req.Amount.IsNegative() {
		return ierr.NewError("amount must not be negative").
			WithHint("Purchase amount must not be negative").
			WithReportableDetails(map[string]any{"amount": req.Amount.String()}).
			Mark(ierr.ErrValidation)
	}
	if req.Amount.GreaterThan(maxAmount) {
		return ierr.NewError("amount above transaction ceiling").
			WithHintf("Purchase amount must not exceed %s", maxAmount.String()).
			WithReportableDetails(map[string]any{"amount": req.Amount.String(), "max": maxAmount.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.Transactions.FindByID(ctx, id)
}

func (s *TransactionServiceImpl) ListTransactionsByMember(ctx context.Context, memberID string, page, limit int) ([]*models.Transaction, error) {
	if _, err := s.Members.FindByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.Transactions.FindByMemberID(ctx, memberID, page, limit)
}
