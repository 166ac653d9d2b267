package mysql

import (
	"context"
	"errors"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const (
	errDuplicateEntry = 1062
	errLockWait       = 1205
	errDeadlock       = 1213
)

type txKey struct{}

// NewStores builds every repository on db
func NewStores(db *gorm.DB) repositories.Stores {
	return repositories.Stores{
		Tx:           NewTransactor(db),
		Members:      &MemberRepository{db: db},
		Rules:        &RuleRepository{db: db},
		Events:       &EventRepository{db: db},
		Transactions: &TransactionRepository{db: db},
		Vouchers:     &VoucherRepository{db: db},
		VoucherLogs:  &VoucherLogRepository{db: db},
		Draws:        &DrawRepository{db: db},
		Prizes:       &PrizeRepository{db: db},
		Winners:      &WinnerRepository{db: db},
	}
}

// AutoMigrate creates or alters the tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allRecords()...)
}

// Transactor keeps the open *gorm.DB transaction in the context so every
// repository call made with that context joins it.
type Transactor struct {
	db *gorm.DB
}

var _ repositories.Transactor = (*Transactor)(nil)

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if err != nil && !ierr.IsKnown(err) {
		return translate(err, "Transaction", "")
	}
	return err
}

// conn returns the transaction carried by ctx, or db
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func notFound(entity, id string) error {
	return ierr.NewError(entity+" not found").
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

// translate maps gorm and MySQL errors onto the service error kinds
func translate(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errDuplicateEntry:
			return ierr.WithError(err).
				WithHintf("%s already exists", entity).
				WithReportableDetails(map[string]any{"id": id}).
				Mark(ierr.ErrConflict)
		case errDeadlock, errLockWait:
			return ierr.WithError(err).
				WithHint("The record is busy, please retry").
				WithReportableDetails(map[string]any{"id": id}).
				Mark(ierr.ErrConflict)
		}
	}
	return ierr.WithError(err).
		WithMessage(entity).
		WithHint("The request could not be stored, please retry").
		Mark(ierr.ErrDatabase)
}

// paginate applies page and limit the same way every list endpoint does
func paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// exists reports whether a row with id is present in model's table
func exists(db *gorm.DB, model any, id string) (bool, error) {
	var n int64
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
