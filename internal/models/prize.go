package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prize is a finite-stock inventory item that winners choose from.
// StockConsumed never exceeds Stock.
type Prize struct {
	ID             string           `bson:"_id" json:"id"`
	Name           string           `bson:"name" json:"name"`
	Description    string           `bson:"description,omitempty" json:"description,omitempty"`
	Category       string           `bson:"category,omitempty" json:"category,omitempty"`
	Value          *decimal.Decimal `bson:"value,omitempty" json:"value,omitempty"`
	ImageURL       string           `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Stock          int              `bson:"stock" json:"stock"`
	StockConsumed  int              `bson:"stockConsumed" json:"stockConsumed"`
	Active         bool             `bson:"active" json:"active"`
	AvailableFrom  *time.Time       `bson:"availableFrom,omitempty" json:"availableFrom,omitempty"`
	AvailableUntil *time.Time       `bson:"availableUntil,omitempty" json:"availableUntil,omitempty"`
	CreatedAt      time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// Remaining is the unclaimed stock. It is always derived, never stored.
func (p *Prize) Remaining() int {
	return p.Stock - p.StockConsumed
}

// NotYetAvailable reports whether now is before the availability window.
func (p *Prize) NotYetAvailable(now time.Time) bool {
	return p.AvailableFrom != nil && now.Before(*p.AvailableFrom)
}

// NoLongerAvailable reports whether now is past the availability window.
func (p *Prize) NoLongerAvailable(now time.Time) bool {
	return p.AvailableUntil != nil && now.After(*p.AvailableUntil)
}

// AvailableAt reports whether a winner could pick the prize at now.
func (p *Prize) AvailableAt(now time.Time) bool {
	return p.Active && p.Remaining() > 0 && !p.NotYetAvailable(now) && !p.NoLongerAvailable(now)
}

// AvailablePrize pairs a prize with its computed remaining stock for listings.
type AvailablePrize struct {
	*Prize
	RemainingStock int `json:"remainingStock"`
}
