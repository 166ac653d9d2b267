package services

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/ArowuTest/retail-loyalty-backend/internal/rules"
	"github.com/ArowuTest/retail-loyalty-backend/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const defaultCodeRetryAttempts = 5

// defaultMaxTransactionAmount bounds a single purchase when no ceiling is configured
var defaultMaxTransactionAmount = decimal.NewFromInt(1_000_000_000_000)

// ServiceParams holds the dependencies shared by every service
type ServiceParams struct {
	repositories.Stores

	Logger            *logger.Logger
	Publisher         publisher.Publisher
	Metrics           *metrics.Metrics
	Codes             utils.CodeGenerator
	Conditions        rules.ConditionEngine
	Location          *time.Location
	CodeRetryAttempts int
	Now               func() time.Time

	MaxTransactionAmount      decimal.Decimal
	MaxVouchersPerTransaction int
}

// withDefaults fills the optional dependencies services can run without
func (p ServiceParams) withDefaults() ServiceParams {
	if p.Logger == nil {
		p.Logger = logger.L
	}
	if p.Publisher == nil {
		p.Publisher = publisher.NoopPublisher{}
	}
	if p.Metrics == nil {
		p.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if p.Codes == nil {
		p.Codes = utils.NewCodeGenerator()
	}
	return p
}

func (p ServiceParams) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p ServiceParams) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.UTC
}

func (p ServiceParams) retryAttempts() int {
	if p.CodeRetryAttempts > 0 {
		return p.CodeRetryAttempts
	}
	return defaultCodeRetryAttempts
}

func (p ServiceParams) maxAmount() decimal.Decimal {
	if p.MaxTransactionAmount.IsPositive() {
		return p.MaxTransactionAmount
	}
	return defaultMaxTransactionAmount
}

func (p ServiceParams) maxVouchers() int {
	if p.MaxVouchersPerTransaction > 0 {
		return p.MaxVouchersPerTransaction
	}
	return models.DefaultMaxVouchersPerTransaction
}

// publish hands events to the bus after the unit of work committed. Failures
// are logged only; the write already happened.
func (p ServiceParams) publish(ctx context.Context, events ...publisher.Event) {
	if len(events) == 0 {
		return
	}
	if err := p.Publisher.Publish(ctx, events...); err != nil {
		p.Logger.Warnw("failed to publish events", "count", len(events), "error", err)
	}
}

// RuleEvaluator decides how many vouchers a purchase earns
type RuleEvaluator interface {
	// Evaluate never fails for a purchase that simply does not qualify; it
	// returns no plans. Only store failures surface as errors.
	Evaluate(ctx context.Context, amount decimal.Decimal, at time.Time, purchase models.PurchaseContext) ([]*models.VoucherPlan, error)
}

// VoucherIssuer creates vouchers for a recorded transaction. It must be
// called inside the unit of work that created the transaction.
type VoucherIssuer interface {
	Issue(ctx context.Context, txn *models.Transaction, adminID string, plans []*models.VoucherPlan) ([]*models.Voucher, error)
}

// TransactionService records purchases and issues the vouchers they earn
type TransactionService interface {
	RecordTransaction(ctx context.Context, req *models.RecordTransactionRequest) (*models.TransactionResult, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	ListTransactionsByMember(ctx context.Context, memberID string, page, limit int) ([]*models.Transaction, error)
}

// VoucherService owns the voucher lifecycle
type VoucherService interface {
	ValidateVoucher(ctx context.Context, code string) (*models.VoucherValidation, error)
	RedeemVoucher(ctx context.Context, code, targetTransactionID, adminID string) (*models.Voucher, error)
	CancelVoucher(ctx context.Context, id, adminID, note string) (*models.Voucher, error)
	SweepExpiredVouchers(ctx context.Context, now time.Time) (int, error)
	GetVoucher(ctx context.Context, id string) (*models.Voucher, error)
	ListVouchersByMember(ctx context.Context, memberID string, status models.VoucherStatus, page, limit int) ([]*models.Voucher, error)
	ListVoucherLogs(ctx context.Context, voucherID string) ([]*models.VoucherLog, error)
}

// DrawService manages lottery draws
type DrawService interface {
	CreateDraw(ctx context.Context, req *models.CreateDrawRequest) (*models.LotteryDraw, error)
	GetDraw(ctx context.Context, id string) (*models.LotteryDraw, error)
	ListDraws(ctx context.Context, page, limit int) ([]*models.LotteryDraw, error)
	RunLotteryDraw(ctx context.Context, drawID string, winnerCount int) (*models.DrawResult, error)
	CompleteDraw(ctx context.Context, id string) (*models.LotteryDraw, error)
	CancelDraw(ctx context.Context, id string) (*models.LotteryDraw, error)
	ListWinners(ctx context.Context, drawID string) ([]*models.Winner, error)
}

// WinnerService moves winners through prize selection and collection
type WinnerService interface {
	GetWinner(ctx context.Context, id string) (*models.Winner, error)
	ChoosePrizeForWinner(ctx context.Context, winnerID, prizeID string) (*models.Winner, error)
	CollectPrize(ctx context.Context, winnerID, adminID, note string) (*models.Winner, error)
}

// PrizeService manages the prize inventory
type PrizeService interface {
	CreatePrize(ctx context.Context, req *models.PrizeRequest) (*models.Prize, error)
	UpdatePrize(ctx context.Context, id string, req *models.PrizeRequest) (*models.Prize, error)
	GetPrize(ctx context.Context, id string) (*models.Prize, error)
	ListPrizes(ctx context.Context, page, limit int) ([]*models.Prize, error)
	ListAvailablePrizes(ctx context.Context) ([]*models.AvailablePrize, error)
}

// RuleService manages promotional rules
type RuleService interface {
	CreateRule(ctx context.Context, req *models.RuleRequest) (*models.Rule, error)
	UpdateRule(ctx context.Context, id string, req *models.RuleRequest) (*models.Rule, error)
	ActivateRule(ctx context.Context, id string) (*models.Rule, error)
	DeactivateRule(ctx context.Context, id string) (*models.Rule, error)
	GetRule(ctx context.Context, id string) (*models.Rule, error)
	ListRules(ctx context.Context, page, limit int) ([]*models.Rule, error)
	GetActiveRule(ctx context.Context, at time.Time) (*models.Rule, error)
}

// EventService manages promotional events
type EventService interface {
	CreateEvent(ctx context.Context, req *models.EventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, req *models.EventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, page, limit int) ([]*models.Event, error)
	ListActiveEvents(ctx context.Context) ([]*models.Event, error)
}

// MemberService manages loyalty members
type MemberService interface {
	CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
}
