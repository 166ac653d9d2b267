package services

import (
	"context"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// RuleEvaluatorImpl matches a purchase against the single applicable rule
type RuleEvaluatorImpl struct {
	ServiceParams
}

var _ RuleEvaluator = (*RuleEvaluatorImpl)(nil)

// NewRuleEvaluator creates a new rule evaluator
func NewRuleEvaluator(params ServiceParams) *RuleEvaluatorImpl {
	return &RuleEvaluatorImpl{ServiceParams: params.withDefaults()}
}

func (e *RuleEvaluatorImpl) Evaluate(ctx context.Context, amount decimal.Decimal, at time.Time, purchase models.PurchaseContext) ([]*models.VoucherPlan, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RuleEvaluator.Evaluate")
	defer span.End()

	rule, err := e.Rules.FindApplicable(ctx, at)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("rule.id", rule.ID), attribute.String("rule.kind", string(rule.Kind)))

	log := e.Logger.With("rule_id", rule.ID, "rule_kind", rule.Kind)

	criteria, err := rule.Criteria()
	if err != nil {
		log.Warnw("active rule is misconfigured, skipping", "error", err)
		return nil, nil
	}

	facts := models.Facts{
		Amount:   amount,
		Minimum:  rule.MinimumValue,
		PerMatch: rule.VouchersPerMatch,
		MaxCount: e.maxVouchers(),
		At:       at.In(e.location()),
		Purchase: purchase,
	}
	if rule.EventID != nil && *rule.EventID != "" {
		event, err := e.Events.FindByID(ctx, *rule.EventID)
		switch {
		case err == nil:
			facts.Event = event
		case !ierr.IsNotFound(err):
			tracing.RecordError(span, err)
			return nil, err
		}
	}

	outcome, err := criteria.Match(facts)
	if err != nil {
		if models.IsVoucherLimit(err) {
			tracing.RecordError(span, err)
			return nil, err
		}
		if ierr.IsValidation(err) {
			log.Warnw("purchase data rejected by rule, treating as no match", "error", err)
			return nil, nil
		}
		return nil, err
	}
	if outcome.Count <= 0 {
		return nil, nil
	}
	if err := facts.CheckLimit(decimal.NewFromInt(int64(outcome.Count))); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if rule.Condition != "" && e.Conditions != nil {
		ok, err := e.Conditions.Evaluate(rule.Condition, facts)
		if err != nil {
			log.Warnw("rule condition failed to evaluate, treating as no match", "error", err)
			return nil, nil
		}
		if !ok {
			return nil, nil
		}
	}

	return []*models.VoucherPlan{{
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		RuleKind:     rule.Kind,
		Count:        outcome.Count,
		ValidityDays: rule.ValidityDays,
		VoucherValue: outcome.VoucherValue,
	}}, nil
}
