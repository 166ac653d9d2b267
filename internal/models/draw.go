package models

import (
	"time"
)

// DrawStatus represents the status of a lottery draw
type DrawStatus string

const (
	DrawStatusActive    DrawStatus = "ACTIVE"
	DrawStatusCompleted DrawStatus = "COMPLETED"
	DrawStatusCancelled DrawStatus = "CANCELLED"
)

// LotteryDraw is a bounded period whose vouchers take part in a draw
type LotteryDraw struct {
	ID                string     `bson:"_id" json:"id"`
	Name              string     `bson:"name" json:"name"`
	Description       string     `bson:"description,omitempty" json:"description,omitempty"`
	StartsAt          time.Time  `bson:"startsAt" json:"startsAt"`
	EndsAt            time.Time  `bson:"endsAt" json:"endsAt"`
	PrizesDistributed int        `bson:"prizesDistributed" json:"prizesDistributed"`
	Status            DrawStatus `bson:"status" json:"status"`
	CreatedBy         string     `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// DrawResult is returned by a draw run
type DrawResult struct {
	Draw     *LotteryDraw `json:"draw"`
	Winners  []*Winner    `json:"winners"`
	PoolSize int          `json:"poolSize"`
}
