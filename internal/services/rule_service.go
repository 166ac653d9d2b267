package services

import (
	"context"
	"strings"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
)

// RuleServiceImpl manages rules. At most one rule is active at a time:
// activating a rule deactivates every other rule in the same unit of work.
type RuleServiceImpl struct {
	ServiceParams
}

var _ RuleService = (*RuleServiceImpl)(nil)

// NewRuleService creates a new rule service
func NewRuleService(params ServiceParams) *RuleServiceImpl {
	return &RuleServiceImpl{ServiceParams: params.withDefaults()}
}

// validateRule checks the kind specific fields, the optional condition and the
// linked event.
func (s *RuleServiceImpl) validateRule(ctx context.Context, r *models.Rule) error {
	if strings.TrimSpace(r.Name) == "" {
		return ierr.NewError("rule name is required").
			WithHint("Rule name is required").
			Mark(ierr.ErrValidation)
	}
	if r.MinimumValue.IsNegative() {
		return ierr.NewError("negative minimum").
			WithHint("Minimum value must not be negative").
			Mark(ierr.ErrValidation)
	}
	if r.VouchersPerMatch < 0 || r.ValidityDays < 1 {
		return ierr.NewError("invalid voucher counts").
			WithHint("Vouchers per match must not be negative and validity must be at least one day").
			Mark(ierr.ErrValidation)
	}
	if r.EndsAt != nil && r.EndsAt.Before(r.StartsAt) {
		return ierr.NewError("rule window is inverted").
			WithHint("Rule end must not be before its start").
			Mark(ierr.ErrValidation)
	}
	if _, err := r.Criteria(); err != nil {
		return err
	}
	if r.Condition != "" && s.Conditions != nil {
		if err := s.Conditions.Compile(r.Condition); err != nil {
			return err
		}
	}
	if r.Kind == models.RuleKindSpecialEvent {
		if _, err := s.Events.FindByID(ctx, *r.EventID); err != nil {
			return err
		}
	}
	return nil
}

func (s *RuleServiceImpl) CreateRule(ctx context.Context, req *models.RuleRequest) (*models.Rule, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RuleService.CreateRule")
	defer span.End()

	now := s.now()
	rule := &models.Rule{
		ID:        models.GenerateID(models.IDPrefixRule),
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.ApplyTo(rule)
	if err := s.validateRule(ctx, rule); err != nil {
		return nil, err
	}

	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.Rules.Create(ctx, rule); err != nil {
			return err
		}
		if rule.Active {
			return s.Rules.ActivateExclusive(ctx, rule.ID)
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	s.Logger.Infow("rule created", "rule_id", rule.ID, "kind", rule.Kind, "active", rule.Active)
	return s.Rules.FindByID(ctx, rule.ID)
}

func (s *RuleServiceImpl) UpdateRule(ctx context.Context, id string, req *models.RuleRequest) (*models.Rule, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RuleService.UpdateRule")
	defer span.End()

	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		rule, err := s.Rules.FindByID(ctx, id)
		if err != nil {
			return err
		}
		req.ApplyTo(rule)
		rule.UpdatedAt = s.now()
		if err := s.validateRule(ctx, rule); err != nil {
			return err
		}
		if err := s.Rules.Update(ctx, rule); err != nil {
			return err
		}
		if rule.Active {
			return s.Rules.ActivateExclusive(ctx, rule.ID)
		}
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return s.Rules.FindByID(ctx, id)
}

// ActivateRule makes id the only active rule
func (s *RuleServiceImpl) ActivateRule(ctx context.Context, id string) (*models.Rule, error) {
	err := s.Tx.WithTx(ctx, func(ctx context.Context) error {
		return s.Rules.ActivateExclusive(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("rule activated", "rule_id", id)
	return s.Rules.FindByID(ctx, id)
}

func (s *RuleServiceImpl) DeactivateRule(ctx context.Context, id string) (*models.Rule, error) {
	if err := s.Rules.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	s.Logger.Infow("rule deactivated", "rule_id", id)
	return s.Rules.FindByID(ctx, id)
}

func (s *RuleServiceImpl) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	return s.Rules.FindByID(ctx, id)
}

func (s *RuleServiceImpl) ListRules(ctx context.Context, page, limit int) ([]*models.Rule, error) {
	return s.Rules.FindAll(ctx, page, limit)
}

// GetActiveRule returns the rule the evaluator would use at at
func (s *RuleServiceImpl) GetActiveRule(ctx context.Context, at time.Time) (*models.Rule, error) {
	return s.Rules.FindApplicable(ctx, at)
}
