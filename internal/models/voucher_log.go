package models

import (
	"time"
)

// VoucherAction is the transition recorded by a log entry
type VoucherAction string

const (
	VoucherActionCreated   VoucherAction = "CREATED"
	VoucherActionUsed      VoucherAction = "USED"
	VoucherActionCancelled VoucherAction = "CANCELLED"
	VoucherActionExpired   VoucherAction = "EXPIRED"
)

// VoucherLog is an append-only audit record
type VoucherLog struct {
	ID        string        `bson:"_id" json:"id"`
	VoucherID string        `bson:"voucherId" json:"voucherId"`
	Action    VoucherAction `bson:"action" json:"action"`
	AdminID   *string       `bson:"adminId,omitempty" json:"adminId,omitempty"`
	Note      string        `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
