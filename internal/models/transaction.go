package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseContext is the optional purchase metadata kind specific rules look at.
type PurchaseContext struct {
	Brand          string `bson:"brand,omitempty" json:"brand,omitempty"`
	CollectionName string `bson:"collectionName,omitempty" json:"collectionName,omitempty"`
	CollectionYear *int   `bson:"collectionYear,omitempty" json:"collectionYear,omitempty"`
	Items          string `bson:"items,omitempty" json:"items,omitempty"` // raw JSON array as sent by the till
	MemberTier     string `bson:"-" json:"-"`                             // filled from the member record
}

// Transaction is one purchase. It is immutable once recorded.
type Transaction struct {
	ID          string          `bson:"_id" json:"id"`
	ReceiptCode string          `bson:"receiptCode" json:"receiptCode"`
	MemberID    string          `bson:"memberId" json:"memberId"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
	PurchasedAt time.Time       `bson:"purchasedAt" json:"purchasedAt"`
	Purchase    PurchaseContext `bson:"purchase" json:"purchase"`
	Note        string          `bson:"note,omitempty" json:"note,omitempty"`
	AdminID     string          `bson:"adminId,omitempty" json:"adminId,omitempty"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
}

// TransactionResult is what recording a purchase hands back to the caller.
type TransactionResult struct {
	Transaction *Transaction   `json:"transaction"`
	Vouchers    []*Voucher     `json:"vouchers"`
	Plans       []*VoucherPlan `json:"plans"`
}
