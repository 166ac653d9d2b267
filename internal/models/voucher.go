package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus is the voucher lifecycle state. Transitions only leave ACTIVE.
type VoucherStatus string

const (
	VoucherStatusActive    VoucherStatus = "ACTIVE"
	VoucherStatusUsed      VoucherStatus = "USED"
	VoucherStatusExpired   VoucherStatus = "EXPIRED"
	VoucherStatusCancelled VoucherStatus = "CANCELLED"
)

// Voucher is a unit of earned benefit
type Voucher struct {
	ID                string           `bson:"_id" json:"id"`
	Code              string           `bson:"code" json:"code"`
	LotteryNumber     *string          `bson:"lotteryNumber,omitempty" json:"lotteryNumber,omitempty"`
	MemberID          string           `bson:"memberId" json:"memberId"`
	TransactionID     string           `bson:"transactionId" json:"transactionId"`
	RuleID            string           `bson:"ruleId" json:"ruleId"`
	Value             *decimal.Decimal `bson:"value,omitempty" json:"value,omitempty"`
	Status            VoucherStatus    `bson:"status" json:"status"`
	ExpiresAt         time.Time        `bson:"expiresAt" json:"expiresAt"`
	UsedAt            *time.Time       `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	UsedTransactionID *string          `bson:"usedTransactionId,omitempty" json:"usedTransactionId,omitempty"`
	CreatedAt         time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// ExpiredAt reports whether the voucher is past its expiry at now, whatever its stored status.
func (v *Voucher) ExpiredAt(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// VoucherStatusChange describes a compare-and-set transition applied by a repository.
type VoucherStatusChange struct {
	From              VoucherStatus
	To                VoucherStatus
	At                time.Time
	UsedTransactionID *string
}

// VoucherValidation is the read-only answer to "can this code be used now".
type VoucherValidation struct {
	Valid   bool     `json:"valid"`
	Voucher *Voucher `json:"voucher,omitempty"`
	Reason  string   `json:"reason"`
}

// VoucherFilter narrows voucher listings
type VoucherFilter struct {
	MemberID string
	Status   VoucherStatus
	Page     int
	Limit    int
}
