package models

import (
	"time"
)

// Event is a time-bounded promotional campaign. A special-event rule adds
// BonusVoucherCount to its base count while the event is active.
type Event struct {
	ID                string    `bson:"_id" json:"id"`
	Name              string    `bson:"name" json:"name"`
	Description       string    `bson:"description,omitempty" json:"description,omitempty"`
	StartsAt          time.Time `bson:"startsAt" json:"startsAt"`
	EndsAt            time.Time `bson:"endsAt" json:"endsAt"`
	BonusVoucherCount int       `bson:"bonusVoucherCount" json:"bonusVoucherCount"`
	Active            bool      `bson:"active" json:"active"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ActiveAt reports whether the event is switched on and at lies in [StartsAt, EndsAt].
func (e *Event) ActiveAt(at time.Time) bool {
	return e.Active && !at.Before(e.StartsAt) && !at.After(e.EndsAt)
}
