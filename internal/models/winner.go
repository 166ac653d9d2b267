package models

import (
	"time"
)

// WinnerStatus tracks prize selection for a drawn voucher
type WinnerStatus string

const (
	WinnerStatusNotChosen WinnerStatus = "NOT_CHOSEN"
	WinnerStatusChosen    WinnerStatus = "CHOSEN"
	WinnerStatusCollected WinnerStatus = "COLLECTED"
)

// Winner represents a voucher drawn in a lottery draw
type Winner struct {
	ID             string       `bson:"_id" json:"id"`
	DrawID         string       `bson:"drawId" json:"drawId"`
	MemberID       string       `bson:"memberId" json:"memberId"`
	VoucherID      string       `bson:"voucherId" json:"voucherId"`
	LotteryNumber  string       `bson:"lotteryNumber" json:"lotteryNumber"`
	PrizeID        *string      `bson:"prizeId,omitempty" json:"prizeId,omitempty"`
	Status         WinnerStatus `bson:"status" json:"status"`
	ChosenAt       *time.Time   `bson:"chosenAt,omitempty" json:"chosenAt,omitempty"`
	CollectedAt    *time.Time   `bson:"collectedAt,omitempty" json:"collectedAt,omitempty"`
	CollectedBy    *string      `bson:"collectedBy,omitempty" json:"collectedBy,omitempty"`
	CollectionNote string       `bson:"collectionNote,omitempty" json:"collectionNote,omitempty"`
	CreatedAt      time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// WinnerStatusChange describes a compare-and-set transition on a winner.
type WinnerStatusChange struct {
	From    WinnerStatus
	To      WinnerStatus
	At      time.Time
	PrizeID *string
	AdminID *string
	Note    string
}
