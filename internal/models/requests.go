package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMemberRequest enrolls a shopper
type CreateMemberRequest struct {
	Name    string     `json:"name" binding:"required"`
	Phone   string     `json:"phone" binding:"required"`
	Email   string     `json:"email" binding:"omitempty,email"`
	Address string     `json:"address"`
	Tier    MemberTier `json:"tier" binding:"omitempty,oneof=VIP GOLD SILVER BRONZE"`
}

// RecordTransactionRequest is a purchase entered at the till
type RecordTransactionRequest struct {
	MemberID       string          `json:"memberId" binding:"required"`
	ReceiptCode    string          `json:"receiptCode" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	PurchasedAt    *time.Time      `json:"purchasedAt"`
	Brand          string          `json:"brand"`
	CollectionName string          `json:"collectionName"`
	CollectionYear *int            `json:"collectionYear"`
	Items          string          `json:"items"`
	Note           string          `json:"note"`
	AdminID        string          `json:"-"`
}

// ValidateVoucherRequest asks whether a code can be used now
type ValidateVoucherRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemVoucherRequest spends a voucher against a purchase
type RedeemVoucherRequest struct {
	Code          string `json:"code" binding:"required"`
	TransactionID string `json:"transactionId" binding:"required"`
}

// CancelVoucherRequest carries an optional reason
type CancelVoucherRequest struct {
	Note string `json:"note"`
}

// RuleRequest creates or replaces a rule
type RuleRequest struct {
	Name             string           `json:"name" binding:"required"`
	Kind             RuleKind         `json:"kind" binding:"required"`
	MinimumValue     decimal.Decimal  `json:"minimumValue"`
	VouchersPerMatch int              `json:"vouchersPerMatch" binding:"min=0"`
	Divisor          *decimal.Decimal `json:"divisor"`
	ValidityDays     int              `json:"validityDays" binding:"min=1"`
	Priority         int              `json:"priority"`
	Accumulate       bool             `json:"accumulate"`
	EventID          *string          `json:"eventId"`
	Active           bool             `json:"active"`
	StartsAt         time.Time        `json:"startsAt" binding:"required"`
	EndsAt           *time.Time       `json:"endsAt"`
	VoucherValue     *decimal.Decimal `json:"voucherValue"`
	Brand            string           `json:"brand"`
	CollectionName   string           `json:"collectionName"`
	CollectionYear   *int             `json:"collectionYear"`
	MemberTier       string           `json:"memberTier"`
	DayOfWeek        string           `json:"dayOfWeek"`
	StartTime        string           `json:"startTime"`
	EndTime          string           `json:"endTime"`
	RequiredItems    []string         `json:"requiredItems"`
	MinItems         *int             `json:"minItems"`
	Condition        string           `json:"condition"`
}

// ApplyTo copies the request onto r, leaving identity and timestamps alone.
func (req *RuleRequest) ApplyTo(r *Rule) {
	r.Name = req.Name
	r.Kind = req.Kind
	r.MinimumValue = req.MinimumValue
	r.VouchersPerMatch = req.VouchersPerMatch
	r.Divisor = req.Divisor
	r.ValidityDays = req.ValidityDays
	r.Priority = req.Priority
	r.Accumulate = req.Accumulate
	r.EventID = req.EventID
	r.Active = req.Active
	r.StartsAt = req.StartsAt
	r.EndsAt = req.EndsAt
	r.VoucherValue = req.VoucherValue
	r.Brand = req.Brand
	r.CollectionName = req.CollectionName
	r.CollectionYear = req.CollectionYear
	r.MemberTier = req.MemberTier
	r.DayOfWeek = req.DayOfWeek
	r.StartTime = req.StartTime
	r.EndTime = req.EndTime
	r.RequiredItems = req.RequiredItems
	r.MinItems = req.MinItems
	r.Condition = req.Condition
}

// EventRequest creates or replaces an event
type EventRequest struct {
	Name              string    `json:"name" binding:"required"`
	Description       string    `json:"description"`
	StartsAt          time.Time `json:"startsAt" binding:"required"`
	EndsAt            time.Time `json:"endsAt" binding:"required"`
	BonusVoucherCount int       `json:"bonusVoucherCount" binding:"min=0"`
	Active            bool      `json:"active"`
}

// CreateDrawRequest opens a lottery period
type CreateDrawRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	CreatedBy   string    `json:"-"`
}

// RunDrawRequest picks winners from a draw's pool
type RunDrawRequest struct {
	WinnerCount int `json:"winnerCount" binding:"required,min=1"`
}

// PrizeRequest creates or replaces a prize
type PrizeRequest struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Value          *decimal.Decimal `json:"value"`
	ImageURL       string           `json:"imageUrl"`
	Stock          int              `json:"stock" binding:"min=0"`
	Active         bool             `json:"active"`
	AvailableFrom  *time.Time       `json:"availableFrom"`
	AvailableUntil *time.Time       `json:"availableUntil"`
}

// ChoosePrizeRequest assigns a prize to a winner
type ChoosePrizeRequest struct {
	PrizeID string `json:"prizeId" binding:"required"`
}

// CollectPrizeRequest records the hand-over
type CollectPrizeRequest struct {
	Note string `json:"note"`
}
