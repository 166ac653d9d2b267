package mysql

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"gorm.io/gorm"
)

var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository stores purchases. The unique receipt_code index uses
// the table's case-insensitive collation.
type TransactionRepository struct {
	db *gorm.DB
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return translate(conn(ctx, r.db).Create(toTransactionRecord(txn)).Error, "Transaction", txn.ReceiptCode)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var rec TransactionRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Transaction", id)
	}
	return rec.toDomain(), nil
}

func (r *TransactionRepository) FindByReceiptCode(ctx context.Context, code string) (*models.Transaction, error) {
	var rec TransactionRecord
	if err := conn(ctx, r.db).Where("receipt_code = ?", code).Take(&rec).Error; err != nil {
		return nil, translate(err, "Transaction", code)
	}
	return rec.toDomain(), nil
}

func (r *TransactionRepository) FindByMemberID(ctx context.Context, memberID string, page, limit int) ([]*models.Transaction, error) {
	var recs []TransactionRecord
	err := conn(ctx, r.db).
		Where("member_id = ?", memberID).
		Scopes(paginate(page, limit)).
		Order("purchased_at DESC, id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Transaction", "")
	}
	return toDomainList(recs, (*TransactionRecord).toDomain), nil
}

var _ repositories.VoucherRepository = (*VoucherRepository)(nil)

// VoucherRepository is the gorm implementation of repositories.VoucherRepository
type VoucherRepository struct {
	db *gorm.DB
}

func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	return translate(conn(ctx, r.db).Create(toVoucherRecord(voucher)).Error, "Voucher", voucher.Code)
}

func (r *VoucherRepository) FindByID(ctx context.Context, id string) (*models.Voucher, error) {
	var rec VoucherRecord
	if err := conn(ctx, r.db).Where("id = ?", id).Take(&rec).Error; err != nil {
		return nil, translate(err, "Voucher", id)
	}
	return rec.toDomain(), nil
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var rec VoucherRecord
	if err := conn(ctx, r.db).Where("code = ?", code).Take(&rec).Error; err != nil {
		return nil, translate(err, "Voucher", code)
	}
	return rec.toDomain(), nil
}

func (r *VoucherRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&VoucherRecord{}).Where("code = ?", code).Limit(1).Count(&n).Error; err != nil {
		return false, translate(err, "Voucher", code)
	}
	return n > 0, nil
}

func (r *VoucherRepository) FindAll(ctx context.Context, filter models.VoucherFilter) ([]*models.Voucher, error) {
	query := conn(ctx, r.db).Model(&VoucherRecord{})
	if filter.MemberID != "" {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}

	var recs []VoucherRecord
	err := query.Scopes(paginate(filter.Page, filter.Limit)).Order("created_at DESC, id DESC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Voucher", "")
	}
	return toDomainList(recs, (*VoucherRecord).toDomain), nil
}

func (r *VoucherRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]*models.Voucher, error) {
	query := conn(ctx, r.db).
		Where("status = ? AND expires_at < ?", string(models.VoucherStatusActive), now).
		Order("expires_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recs []VoucherRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, translate(err, "Voucher", "")
	}
	return toDomainList(recs, (*VoucherRecord).toDomain), nil
}

func (r *VoucherRepository) FindLotteryEligible(ctx context.Context, start, end time.Time) ([]*models.Voucher, error) {
	var recs []VoucherRecord
	err := conn(ctx, r.db).
		Where("status = ?", string(models.VoucherStatusActive)).
		Where("lottery_number IS NOT NULL AND lottery_number <> ''").
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at ASC, id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Voucher", "")
	}
	return toDomainList(recs, (*VoucherRecord).toDomain), nil
}

// TransitionStatus is an UPDATE ... WHERE status = from. Only one of several
// concurrent callers sees a row affected.
func (r *VoucherRepository) TransitionStatus(ctx context.Context, id string, change models.VoucherStatusChange) (bool, error) {
	updates := map[string]any{"status": string(change.To), "updated_at": change.At}
	if change.To == models.VoucherStatusUsed {
		updates["used_at"] = change.At
		updates["used_transaction_id"] = change.UsedTransactionID
	}
	res := conn(ctx, r.db).Model(&VoucherRecord{}).
		Where("id = ? AND status = ?", id, string(change.From)).
		Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error, "Voucher", id)
	}
	return res.RowsAffected == 1, nil
}

var _ repositories.VoucherLogRepository = (*VoucherLogRepository)(nil)

// VoucherLogRepository is append-only
type VoucherLogRepository struct {
	db *gorm.DB
}

func (r *VoucherLogRepository) Create(ctx context.Context, log *models.VoucherLog) error {
	return translate(conn(ctx, r.db).Create(toVoucherLogRecord(log)).Error, "Voucher log", log.ID)
}

func (r *VoucherLogRepository) FindByVoucherID(ctx context.Context, voucherID string) ([]*models.VoucherLog, error) {
	var recs []VoucherLogRecord
	err := conn(ctx, r.db).Where("voucher_id = ?", voucherID).Order("created_at ASC, id ASC").Find(&recs).Error
	if err != nil {
		return nil, translate(err, "Voucher log", voucherID)
	}
	return toDomainList(recs, (*VoucherLogRecord).toDomain), nil
}
