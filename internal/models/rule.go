package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleKind identifies which voucher policy a rule applies
type RuleKind string

const (
	RuleKindMinimumSpend      RuleKind = "MINIMUM_SPEND"
	RuleKindMultipleOfAmount  RuleKind = "MULTIPLE_OF_AMOUNT"
	RuleKindSpecialEvent      RuleKind = "SPECIAL_EVENT"
	RuleKindBrandSpecific     RuleKind = "BRAND_SPECIFIC"
	RuleKindHighValuePurchase RuleKind = "HIGH_VALUE_PURCHASE"
	RuleKindNewCollection     RuleKind = "NEW_COLLECTION"
	RuleKindMemberExclusive   RuleKind = "MEMBER_EXCLUSIVE"
	RuleKindTimeBased         RuleKind = "TIME_BASED"
	RuleKindBundling          RuleKind = "BUNDLING"
)

// RuleKinds lists every supported kind in display order
var RuleKinds = []RuleKind{
	RuleKindMinimumSpend,
	RuleKindMultipleOfAmount,
	RuleKindSpecialEvent,
	RuleKindBrandSpecific,
	RuleKindHighValuePurchase,
	RuleKindNewCollection,
	RuleKindMemberExclusive,
	RuleKindTimeBased,
	RuleKindBundling,
}

// Rule is a promotional policy as persisted. Kind specific fields are flat
// here; Criteria decodes them into the variant for the rule's kind.
type Rule struct {
	ID               string           `bson:"_id" json:"id"`
	Name             string           `bson:"name" json:"name"`
	Kind             RuleKind         `bson:"kind" json:"kind"`
	MinimumValue     decimal.Decimal  `bson:"minimumValue" json:"minimumValue"`
	VouchersPerMatch int              `bson:"vouchersPerMatch" json:"vouchersPerMatch"`
	Divisor          *decimal.Decimal `bson:"divisor,omitempty" json:"divisor,omitempty"`
	ValidityDays     int              `bson:"validityDays" json:"validityDays"`
	Priority         int              `bson:"priority" json:"priority"`
	Accumulate       bool             `bson:"accumulate" json:"accumulate"`
	EventID          *string          `bson:"eventId,omitempty" json:"eventId,omitempty"`
	Active           bool             `bson:"active" json:"active"`
	StartsAt         time.Time        `bson:"startsAt" json:"startsAt"`
	EndsAt           *time.Time       `bson:"endsAt,omitempty" json:"endsAt,omitempty"`
	VoucherValue     *decimal.Decimal `bson:"voucherValue,omitempty" json:"voucherValue,omitempty"`
	Brand            string           `bson:"brand,omitempty" json:"brand,omitempty"`
	CollectionName   string           `bson:"collectionName,omitempty" json:"collectionName,omitempty"`
	CollectionYear   *int             `bson:"collectionYear,omitempty" json:"collectionYear,omitempty"`
	MemberTier       string           `bson:"memberTier,omitempty" json:"memberTier,omitempty"`
	DayOfWeek        string           `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"`
	StartTime        string           `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime          string           `bson:"endTime,omitempty" json:"endTime,omitempty"`
	RequiredItems    []string         `bson:"requiredItems,omitempty" json:"requiredItems,omitempty"`
	MinItems         *int             `bson:"minItems,omitempty" json:"minItems,omitempty"`
	Condition        string           `bson:"condition,omitempty" json:"condition,omitempty"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// InWindow reports whether at falls inside [StartsAt, EndsAt]. An unset end
// leaves the window open.
func (r *Rule) InWindow(at time.Time) bool {
	if at.Before(r.StartsAt) {
		return false
	}
	return r.EndsAt == nil || !at.After(*r.EndsAt)
}

// ApplicableAt is the evaluator's selection predicate.
func (r *Rule) ApplicableAt(at time.Time) bool {
	return r.Active && r.InWindow(at)
}

// VoucherPlan is one line of evaluator output: how many vouchers a purchase
// earns under a rule and how long they stay valid.
type VoucherPlan struct {
	RuleID       string           `json:"ruleId"`
	RuleName     string           `json:"ruleName"`
	RuleKind     RuleKind         `json:"ruleKind"`
	Count        int              `json:"count"`
	ValidityDays int              `json:"validityDays"`
	VoucherValue *decimal.Decimal `json:"voucherValue,omitempty"`
}
