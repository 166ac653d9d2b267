package models

import (
	"time"
)

// MemberTier names a loyalty tier used by member-exclusive rules
type MemberTier string

const (
	MemberTierVIP    MemberTier = "VIP"
	MemberTierGold   MemberTier = "GOLD"
	MemberTierSilver MemberTier = "SILVER"
	MemberTierBronze MemberTier = "BRONZE"
)

// Member represents a shopper enrolled in the loyalty program
type Member struct {
	ID        string     `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Phone     string     `bson:"phone" json:"phone"`
	Email     string     `bson:"email,omitempty" json:"email,omitempty"`
	Address   string     `bson:"address,omitempty" json:"address,omitempty"`
	Tier      MemberTier `bson:"tier,omitempty" json:"tier,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}
