package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Facts is everything a rule variant may look at when matching a purchase.
type Facts struct {
	Amount   decimal.Decimal
	Minimum  decimal.Decimal
	PerMatch int
	MaxCount int       // vouchers one transaction may earn; 0 means the default
	At       time.Time // purchase instant in the store timezone
	Purchase PurchaseContext
	Event    *Event // linked event, nil when absent
}

// DefaultMaxVouchersPerTransaction applies when Facts.MaxCount is unset.
const DefaultMaxVouchersPerTransaction = 1000

// ErrVoucherLimit marks a purchase that would earn more vouchers than one
// transaction may carry.
var ErrVoucherLimit = errors.New("voucher limit exceeded")

// IsVoucherLimit reports whether err came from CheckLimit.
func IsVoucherLimit(err error) bool {
	return errors.Is(err, ErrVoucherLimit)
}

func (f Facts) meetsMinimum() bool {
	return f.Amount.GreaterThanOrEqual(f.Minimum)
}

func (f Facts) maxCount() int {
	if f.MaxCount > 0 {
		return f.MaxCount
	}
	return DefaultMaxVouchersPerTransaction
}

// CheckLimit rejects a voucher count above the per-transaction cap. The count
// is a decimal so it can be checked before it is narrowed to an int.
func (f Facts) CheckLimit(count decimal.Decimal) error {
	limit := f.maxCount()
	if count.LessThanOrEqual(decimal.NewFromInt(int64(limit))) {
		return nil
	}
	return ierr.WithError(ErrVoucherLimit).
		WithHintf("This purchase would earn %s vouchers, at most %d are allowed per transaction", count.String(), limit).
		WithReportableDetails(map[string]any{"vouchers": count.String(), "limit": limit}).
		Mark(ierr.ErrValidation)
}

// Outcome is the result of matching one purchase against one rule.
type Outcome struct {
	Count        int
	VoucherValue *decimal.Decimal
}

var noMatch = Outcome{}

// Criteria is the kind specific part of a rule. The implementations in this
// file are the complete set; each one carries only the fields its kind needs.
type Criteria interface {
	Kind() RuleKind
	Match(f Facts) (Outcome, error)
}

type MinimumSpend struct{}

type MultipleOfAmount struct {
	Divisor decimal.Decimal
}

type SpecialEvent struct {
	EventID string
}

type BrandSpecific struct {
	Brand        string
	VoucherValue *decimal.Decimal
}

type HighValuePurchase struct {
	VoucherValue *decimal.Decimal
}

type NewCollection struct {
	Name string
	Year *int
}

type MemberExclusive struct {
	Tier string
}

type TimeBased struct {
	Days   DayFilter
	Window *TimeWindow
}

type Bundling struct {
	RequiredItems []string
	MinItems      int
}

func (MinimumSpend) Kind() RuleKind      { return RuleKindMinimumSpend }
func (MultipleOfAmount) Kind() RuleKind  { return RuleKindMultipleOfAmount }
func (SpecialEvent) Kind() RuleKind      { return RuleKindSpecialEvent }
func (BrandSpecific) Kind() RuleKind     { return RuleKindBrandSpecific }
func (HighValuePurchase) Kind() RuleKind { return RuleKindHighValuePurchase }
func (NewCollection) Kind() RuleKind     { return RuleKindNewCollection }
func (MemberExclusive) Kind() RuleKind   { return RuleKindMemberExclusive }
func (TimeBased) Kind() RuleKind         { return RuleKindTimeBased }
func (Bundling) Kind() RuleKind          { return RuleKindBundling }

func (MinimumSpend) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch}, nil
}

// Match floors amount/divisor, so 250,000 against 100,000 counts twice.
func (c MultipleOfAmount) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() || !c.Divisor.IsPositive() {
		return noMatch, nil
	}
	count := f.Amount.Div(c.Divisor).Floor().Mul(decimal.NewFromInt(int64(f.PerMatch)))
	if err := f.CheckLimit(count); err != nil {
		return noMatch, err
	}
	return Outcome{Count: int(count.IntPart())}, nil
}

func (c SpecialEvent) Match(f Facts) (Outcome, error) {
	if f.Event == nil || f.Event.ID != c.EventID || !f.Event.ActiveAt(f.At) {
		return noMatch, nil
	}
	if !f.meetsMinimum() {
		return noMatch, nil
	}
	count := decimal.NewFromInt(int64(f.PerMatch)).Add(decimal.NewFromInt(int64(f.Event.BonusVoucherCount)))
	if err := f.CheckLimit(count); err != nil {
		return noMatch, err
	}
	return Outcome{Count: int(count.IntPart())}, nil
}

func (c BrandSpecific) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() || !strings.EqualFold(strings.TrimSpace(f.Purchase.Brand), c.Brand) {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch, VoucherValue: c.VoucherValue}, nil
}

func (c HighValuePurchase) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch, VoucherValue: c.VoucherValue}, nil
}

func (c NewCollection) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() || !strings.EqualFold(strings.TrimSpace(f.Purchase.CollectionName), c.Name) {
		return noMatch, nil
	}
	if c.Year != nil && (f.Purchase.CollectionYear == nil || *f.Purchase.CollectionYear != *c.Year) {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch}, nil
}

func (c MemberExclusive) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() || !strings.EqualFold(strings.TrimSpace(f.Purchase.MemberTier), c.Tier) {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch}, nil
}

// Match requires both the day filter and the time window when both are set.
// A rule with neither always matches once the minimum is met.
func (c TimeBased) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() {
		return noMatch, nil
	}
	if !c.Days.Allows(f.At.Weekday()) {
		return noMatch, nil
	}
	if c.Window != nil && !c.Window.Contains(f.At) {
		return noMatch, nil
	}
	return Outcome{Count: f.PerMatch}, nil
}

// Match fails with a validation error when the purchase item list is not a
// JSON array of strings. Callers treat that as a non-match.
func (c Bundling) Match(f Facts) (Outcome, error) {
	if !f.meetsMinimum() {
		return noMatch, nil
	}
	purchased, err := f.Purchase.ItemList()
	if err != nil {
		return noMatch, err
	}
	if len(purchased) < c.MinItems {
		return noMatch, nil
	}
	lowered := lo.Map(purchased, func(item string, _ int) string { return strings.ToLower(item) })
	for _, required := range c.RequiredItems {
		needle := strings.ToLower(required)
		if !lo.ContainsBy(lowered, func(item string) bool { return strings.Contains(item, needle) }) {
			return noMatch, nil
		}
	}
	return Outcome{Count: f.PerMatch}, nil
}

// DayFilter restricts a time based rule to certain days. The zero value allows every day.
type DayFilter string

const (
	DayFilterAny     DayFilter = ""
	DayFilterWeekend DayFilter = "WEEKEND"
	DayFilterWeekday DayFilter = "WEEKDAY"
)

// ParseDayFilter accepts WEEKEND, WEEKDAY or an English day name in any case.
func ParseDayFilter(s string) (DayFilter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch DayFilter(s) {
	case DayFilterAny, DayFilterWeekend, DayFilterWeekday:
		return DayFilter(s), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToUpper(d.String()) == s {
			return DayFilter(s), nil
		}
	}
	return DayFilterAny, fmt.Errorf("unknown day filter %q", s)
}

// Allows reports whether a purchase on day d passes the filter.
func (d DayFilter) Allows(day time.Weekday) bool {
	weekend := day == time.Saturday || day == time.Sunday
	switch d {
	case DayFilterAny:
		return true
	case DayFilterWeekend:
		return weekend
	case DayFilterWeekday:
		return !weekend
	default:
		return strings.ToUpper(day.String()) == string(d)
	}
}

// TimeWindow is a time-of-day range in minutes after midnight, both ends
// inclusive. End before Start wraps past midnight.
type TimeWindow struct {
	Start int
	End   int
}

// ParseTimeWindow parses a pair of HH:MM strings.
func ParseTimeWindow(start, end string) (*TimeWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return nil, err
	}
	e, err := parseClock(end)
	if err != nil {
		return nil, err
	}
	return &TimeWindow{Start: s, End: e}, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether the clock time of at lies in the window.
func (w TimeWindow) Contains(at time.Time) bool {
	m := at.Hour()*60 + at.Minute()
	if w.End < w.Start {
		return m >= w.Start || m <= w.End
	}
	return m >= w.Start && m <= w.End
}

// Criteria decodes the persisted kind specific fields into the rule's
// variant. It fails with a validation error when a field the kind needs is
// missing or malformed.
func (r *Rule) Criteria() (Criteria, error) {
	invalid := func(hint string) error {
		return ierr.NewError("invalid rule definition").
			WithHint(hint).
			WithReportableDetails(map[string]any{"rule_id": r.ID, "kind": r.Kind}).
			Mark(ierr.ErrValidation)
	}

	switch r.Kind {
	case RuleKindMinimumSpend:
		return MinimumSpend{}, nil
	case RuleKindMultipleOfAmount:
		if r.Divisor == nil || !r.Divisor.IsPositive() {
			return nil, invalid("Multiple-of rules need a positive divisor")
		}
		return MultipleOfAmount{Divisor: *r.Divisor}, nil
	case RuleKindSpecialEvent:
		if r.EventID == nil || *r.EventID == "" {
			return nil, invalid("Special event rules must reference an event")
		}
		return SpecialEvent{EventID: *r.EventID}, nil
	case RuleKindBrandSpecific:
		if strings.TrimSpace(r.Brand) == "" {
			return nil, invalid("Brand specific rules need a brand")
		}
		return BrandSpecific{Brand: strings.TrimSpace(r.Brand), VoucherValue: r.VoucherValue}, nil
	case RuleKindHighValuePurchase:
		return HighValuePurchase{VoucherValue: r.VoucherValue}, nil
	case RuleKindNewCollection:
		if strings.TrimSpace(r.CollectionName) == "" {
			return nil, invalid("New collection rules need a collection name")
		}
		return NewCollection{Name: strings.TrimSpace(r.CollectionName), Year: r.CollectionYear}, nil
	case RuleKindMemberExclusive:
		if strings.TrimSpace(r.MemberTier) == "" {
			return nil, invalid("Member exclusive rules need a member tier")
		}
		return MemberExclusive{Tier: strings.TrimSpace(r.MemberTier)}, nil
	case RuleKindTimeBased:
		days, err := ParseDayFilter(r.DayOfWeek)
		if err != nil {
			return nil, invalid("Day of week must be a day name, WEEKEND or WEEKDAY")
		}
		tb := TimeBased{Days: days}
		if r.StartTime != "" && r.EndTime != "" {
			w, err := ParseTimeWindow(r.StartTime, r.EndTime)
			if err != nil {
				return nil, invalid("Start and end time must use HH:MM")
			}
			tb.Window = w
		}
		return tb, nil
	case RuleKindBundling:
		required := lo.Compact(lo.Map(r.RequiredItems, func(s string, _ int) string { return strings.TrimSpace(s) }))
		if len(required) == 0 {
			return nil, invalid("Bundling rules need at least one required item")
		}
		minItems := len(required)
		if r.MinItems != nil && *r.MinItems > 0 {
			minItems = *r.MinItems
		}
		return Bundling{RequiredItems: required, MinItems: minItems}, nil
	default:
		return nil, invalid(fmt.Sprintf("Unknown rule kind %q", r.Kind))
	}
}

// ItemList decodes the raw item JSON captured at the till. An empty string
// means no items.
func (p PurchaseContext) ItemList() ([]string, error) {
	raw := strings.TrimSpace(p.Items)
	if raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Purchased items must be a JSON array of names").
			Mark(ierr.ErrValidation)
	}
	return items, nil
}
