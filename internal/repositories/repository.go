package repositories

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
)

// Transactor runs fn as one all-or-nothing unit of work. Repositories called
// with the ctx handed to fn join the unit; a nested WithTx reuses it.
// Implementations may call fn more than once when the store asks for a retry,
// so fn must not keep side effects outside the store.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

// RuleRepository defines the interface for rule data operations
type RuleRepository interface {
	Create(ctx context.Context, rule *models.Rule) error
	FindByID(ctx context.Context, id string) (*models.Rule, error)
	Update(ctx context.Context, rule *models.Rule) error
	FindAll(ctx context.Context, page, limit int) ([]*models.Rule, error)
	// FindApplicable returns the active rule whose validity window contains at,
	// or a not-found error.
	FindApplicable(ctx context.Context, at time.Time) (*models.Rule, error)
	// ActivateExclusive marks id active and every other rule inactive. It
	// serializes concurrent activations and must run inside a unit of work.
	ActivateExclusive(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
}

// EventRepository defines the interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	FindAll(ctx context.Context, page, limit int) ([]*models.Event, error)
	FindActiveAt(ctx context.Context, at time.Time) ([]*models.Event, error)
}

// TransactionRepository defines the interface for purchase transaction operations
type TransactionRepository interface {
	// Create fails with a conflict error when the receipt code is taken.
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	FindByReceiptCode(ctx context.Context, code string) (*models.Transaction, error)
	FindByMemberID(ctx context.Context, memberID string, page, limit int) ([]*models.Transaction, error)
}

// VoucherRepository defines the interface for voucher operations.
// Vouchers are never deleted.
type VoucherRepository interface {
	// Create fails with a conflict error when the code is taken.
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id string) (*models.Voucher, error)
	FindByCode(ctx context.Context, code string) (*models.Voucher, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context, filter models.VoucherFilter) ([]*models.Voucher, error)
	// FindExpirable lists ACTIVE vouchers with ExpiresAt strictly before now.
	FindExpirable(ctx context.Context, now time.Time, limit int) ([]*models.Voucher, error)
	// FindLotteryEligible lists ACTIVE vouchers carrying a lottery number and
	// created in [start, end].
	FindLotteryEligible(ctx context.Context, start, end time.Time) ([]*models.Voucher, error)
	// TransitionStatus applies change only if the stored status equals
	// change.From and reports whether it did.
	TransitionStatus(ctx context.Context, id string, change models.VoucherStatusChange) (bool, error)
}

// VoucherLogRepository is append-only
type VoucherLogRepository interface {
	Create(ctx context.Context, log *models.VoucherLog) error
	FindByVoucherID(ctx context.Context, voucherID string) ([]*models.VoucherLog, error)
}

// DrawRepository defines the interface for lottery draw operations
type DrawRepository interface {
	Create(ctx context.Context, draw *models.LotteryDraw) error
	FindByID(ctx context.Context, id string) (*models.LotteryDraw, error)
	// FindByIDForUpdate reads the draw and holds it against other units of
	// work until the current one ends, so runs of one draw serialize.
	FindByIDForUpdate(ctx context.Context, id string) (*models.LotteryDraw, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.LotteryDraw, error)
	// IncrementDistributed adds n to PrizesDistributed if the draw is still ACTIVE.
	IncrementDistributed(ctx context.Context, id string, n int) (bool, error)
	TransitionStatus(ctx context.Context, id string, from, to models.DrawStatus) (bool, error)
}

// PrizeRepository defines the interface for prize inventory operations
type PrizeRepository interface {
	Create(ctx context.Context, prize *models.Prize) error
	FindByID(ctx context.Context, id string) (*models.Prize, error)
	// Update writes the descriptive fields and stock. It never lowers stock
	// below what has been consumed and does not touch StockConsumed.
	Update(ctx context.Context, prize *models.Prize) (bool, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Prize, error)
	FindAvailable(ctx context.Context, now time.Time) ([]*models.Prize, error)
	// ConsumeStock increments StockConsumed by one only while it is below
	// Stock, and reports whether it did.
	ConsumeStock(ctx context.Context, id string) (bool, error)
}

// WinnerRepository defines the interface for winner operations
type WinnerRepository interface {
	CreateMany(ctx context.Context, winners []*models.Winner) error
	FindByID(ctx context.Context, id string) (*models.Winner, error)
	FindByDrawID(ctx context.Context, drawID string) ([]*models.Winner, error)
	TransitionStatus(ctx context.Context, id string, change models.WinnerStatusChange) (bool, error)
}

// Stores groups every repository behind one unit-of-work provider. Each
// storage backend builds one of these.
type Stores struct {
	Tx           Transactor
	Members      MemberRepository
	Rules        RuleRepository
	Events       EventRepository
	Transactions TransactionRepository
	Vouchers     VoucherRepository
	VoucherLogs  VoucherLogRepository
	Draws        DrawRepository
	Prizes       PrizeRepository
	Winners      WinnerRepository
}
