package mysql

import (
	"time"

	"github.com/shopspring/decimal"
)

// Records are the gorm table models. They stay separate from the domain
// models so column types and indexes can be declared here.

type MemberRecord struct {
	ID        string    `gorm:"primaryKey;size:40"`
	Name      string    `gorm:"size:255;not null"`
	Phone     string    `gorm:"size:32;index"`
	Email     string    `gorm:"size:255"`
	Address   string    `gorm:"type:text"`
	Tier      string    `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemberRecord) TableName() string { return "members" }

type RuleRecord struct {
	ID               string           `gorm:"primaryKey;size:40"`
	Name             string           `gorm:"size:255;not null"`
	Kind             string           `gorm:"size:32;not null"`
	MinimumValue     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	VouchersPerMatch int
	Divisor          *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ValidityDays     int
	Priority         int
	Accumulate       bool
	EventID          *string          `gorm:"size:40"`
	Active           bool             `gorm:"index"`
	StartsAt         time.Time
	EndsAt           *time.Time
	VoucherValue     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Brand            string           `gorm:"size:128"`
	CollectionName   string           `gorm:"size:128"`
	CollectionYear   *int
	MemberTier       string           `gorm:"size:16"`
	DayOfWeek        string           `gorm:"size:16"`
	StartTime        string           `gorm:"size:5"`
	EndTime          string           `gorm:"size:5"`
	RequiredItems    []string         `gorm:"serializer:json;type:text"`
	MinItems         *int
	Condition        string           `gorm:"column:condition_expr;type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RuleRecord) TableName() string { return "rules" }

// RuleActivationRecord is the single lock row every activation upserts.
type RuleActivationRecord struct {
	ID        string    `gorm:"primaryKey;size:16"`
	RuleID    string    `gorm:"size:40"`
	UpdatedAt time.Time
}

func (RuleActivationRecord) TableName() string { return "rule_activation" }

type EventRecord struct {
	ID                string    `gorm:"primaryKey;size:40"`
	Name              string    `gorm:"size:255;not null"`
	Description       string    `gorm:"type:text"`
	StartsAt          time.Time
	EndsAt            time.Time
	BonusVoucherCount int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (EventRecord) TableName() string { return "events" }

type TransactionRecord struct {
	ID             string          `gorm:"primaryKey;size:40"`
	ReceiptCode    string          `gorm:"size:64;uniqueIndex;not null"`
	MemberID       string          `gorm:"size:40;index:idx_member_purchased,priority:1"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PurchasedAt    time.Time       `gorm:"index:idx_member_purchased,priority:2"`
	Brand          string          `gorm:"size:128"`
	CollectionName string          `gorm:"size:128"`
	CollectionYear *int
	Items          string          `gorm:"type:text"`
	Note           string          `gorm:"type:text"`
	AdminID        string          `gorm:"size:40"`
	CreatedAt      time.Time
}

func (TransactionRecord) TableName() string { return "transactions" }

type VoucherRecord struct {
	ID                string           `gorm:"primaryKey;size:40"`
	Code              string           `gorm:"size:32;uniqueIndex;not null"`
	LotteryNumber     *string          `gorm:"size:14"`
	MemberID          string           `gorm:"size:40;index"`
	TransactionID     string           `gorm:"size:40;index"`
	RuleID            string           `gorm:"size:40"`
	Value             *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Status            string           `gorm:"size:16;index:idx_status_expires,priority:1;index:idx_status_created,priority:1"`
	ExpiresAt         time.Time        `gorm:"index:idx_status_expires,priority:2"`
	UsedAt            *time.Time
	UsedTransactionID *string          `gorm:"size:40"`
	CreatedAt         time.Time        `gorm:"index:idx_status_created,priority:2"`
	UpdatedAt         time.Time
}

func (VoucherRecord) TableName() string { return "vouchers" }

type VoucherLogRecord struct {
	ID        string    `gorm:"primaryKey;size:40"`
	VoucherID string    `gorm:"size:40;index"`
	Action    string    `gorm:"size:16"`
	AdminID   *string   `gorm:"size:40"`
	Note      string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (VoucherLogRecord) TableName() string { return "voucher_logs" }

type DrawRecord struct {
	ID                string    `gorm:"primaryKey;size:40"`
	Name              string    `gorm:"size:255;not null"`
	Description       string    `gorm:"type:text"`
	StartsAt          time.Time
	EndsAt            time.Time
	PrizesDistributed int
	Status            string    `gorm:"size:16"`
	CreatedBy         string    `gorm:"size:40"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (DrawRecord) TableName() string { return "lottery_draws" }

type PrizeRecord struct {
	ID             string           `gorm:"primaryKey;size:40"`
	Name           string           `gorm:"size:255;not null"`
	Description    string           `gorm:"type:text"`
	Category       string           `gorm:"size:64"`
	Value          *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ImageURL       string           `gorm:"size:512"`
	Stock          int
	StockConsumed  int
	Active         bool
	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PrizeRecord) TableName() string { return "prizes" }

type WinnerRecord struct {
	ID             string  `gorm:"primaryKey;size:40"`
	DrawID         string  `gorm:"size:40;uniqueIndex:idx_draw_voucher,priority:1"`
	MemberID       string  `gorm:"size:40"`
	VoucherID      string  `gorm:"size:40;uniqueIndex:idx_draw_voucher,priority:2"`
	LotteryNumber  string  `gorm:"size:14"`
	PrizeID        *string `gorm:"size:40"`
	Status         string  `gorm:"size:16"`
	ChosenAt       *time.Time
	CollectedAt    *time.Time
	CollectedBy    *string `gorm:"size:40"`
	CollectionNote string  `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (WinnerRecord) TableName() string { return "winners" }

// allRecords lists the tables AutoMigrate manages
func allRecords() []any {
	return []any{
		&MemberRecord{},
		&RuleRecord{},
		&RuleActivationRecord{},
		&EventRecord{},
		&TransactionRecord{},
		&VoucherRecord{},
		&VoucherLogRecord{},
		&DrawRecord{},
		&PrizeRecord{},
		&WinnerRecord{},
	}
}
