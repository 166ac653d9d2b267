package services

import (
	"context"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type RuleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *RuleServiceImpl
}

func TestRuleService(t *testing.T) {
	suite.Run(t, new(RuleServiceSuite))
}

func (s *RuleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRuleService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *RuleServiceSuite) request(name string, active bool) *models.RuleRequest {
	return &models.RuleRequest{
		Name:             name,
		Kind:             models.RuleKindMinimumSpend,
		MinimumValue:     decimal.NewFromInt(100_000),
		VouchersPerMatch: 1,
		ValidityDays:     30,
		Active:           active,
		StartsAt:         s.GetNow().Add(-24 * time.Hour),
	}
}

func (s *RuleServiceSuite) activeRules() []*models.Rule {
	rules, err := s.service.ListRules(s.GetContext(), 1, 100)
	s.Require().NoError(err)
	return lo.Filter(rules, func(r *models.Rule, _ int) bool { return r.Active })
}

func (s *RuleServiceSuite) TestOnlyOneRuleIsActive() {
	first, err := s.service.CreateRule(s.GetContext(), s.request("First", true))
	s.Require().NoError(err)
	s.True(first.Active)

	second, err := s.service.CreateRule(s.GetContext(), s.request("Second", true))
	s.Require().NoError(err)

	active := s.activeRules()
	s.Require().Len(active, 1)
	s.Equal(second.ID, active[0].ID)

	draft, err := s.service.CreateRule(s.GetContext(), s.request("Draft", false))
	s.Require().NoError(err)
	s.False(draft.Active)
	s.Len(s.activeRules(), 1)

	activated, err := s.service.ActivateRule(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.True(activated.Active)
	active = s.activeRules()
	s.Require().Len(active, 1)
	s.Equal(first.ID, active[0].ID)

	current, err := s.service.GetActiveRule(s.GetContext(), s.GetNow())
	s.Require().NoError(err)
	s.Equal(first.ID, current.ID)

	_, err = s.service.DeactivateRule(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.Empty(s.activeRules())

	_, err = s.service.GetActiveRule(s.GetContext(), s.GetNow())
	s.True(ierr.IsNotFound(err))

	_, err = s.service.ActivateRule(s.GetContext(), "rul_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *RuleServiceSuite) TestConcurrentActivationsLeaveOneActive() {
	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		r, err := s.service.CreateRule(s.GetContext(), s.request("Rule", false))
		s.Require().NoError(err)
		ids = append(ids, r.ID)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for _, id := range ids {
		g.Go(func() error {
			_, err := s.service.ActivateRule(ctx, id)
			return err
		})
	}
	s.Require().NoError(g.Wait())

	active := s.activeRules()
	s.Require().Len(active, 1)
	s.Contains(ids, active[0].ID)
}

func (s *RuleServiceSuite) TestUpdateRuleReactivates() {
	first, err := s.service.CreateRule(s.GetContext(), s.request("First", true))
	s.Require().NoError(err)
	second, err := s.service.CreateRule(s.GetContext(), s.request("Second", false))
	s.Require().NoError(err)

	req := s.request("Second, renamed", true)
	req.MinimumValue = decimal.NewFromInt(250_000)
	updated, err := s.service.UpdateRule(s.GetContext(), second.ID, req)
	s.Require().NoError(err)
	s.Equal("Second, renamed", updated.Name)
	s.True(updated.MinimumValue.Equal(decimal.NewFromInt(250_000)))
	s.True(updated.Active)

	stale, err := s.service.GetRule(s.GetContext(), first.ID)
	s.Require().NoError(err)
	s.False(stale.Active)
}

func (s *RuleServiceSuite) TestValidation() {
	event := &models.Event{
		ID:       models.GenerateID(models.IDPrefixEvent),
		Name:     "Ramadan",
		StartsAt: s.GetNow(),
		EndsAt:   s.GetNow().Add(240 * time.Hour),
		Active:   true,
	}
	s.Require().NoError(s.GetStores().Events.Create(s.GetContext(), event))

	testCases := []struct {
		name    string
		mutate  func(r *models.RuleRequest)
		checkFn func(error) bool
	}{
		{
			name:    "missing_name",
			mutate:  func(r *models.RuleRequest) { r.Name = " " },
			checkFn: ierr.IsValidation,
		},
		{
			name:    "unknown_kind",
			mutate:  func(r *models.RuleRequest) { r.Kind = "BUY_ONE_GET_ONE" },
			checkFn: ierr.IsValidation,
		},
		{
			name:    "zero_validity",
			mutate:  func(r *models.RuleRequest) { r.ValidityDays = 0 },
			checkFn: ierr.IsValidation,
		},
		{
			name: "inverted_window",
			mutate: func(r *models.RuleRequest) {
				r.EndsAt = lo.ToPtr(r.StartsAt.Add(-time.Hour))
			},
			checkFn: ierr.IsValidation,
		},
		{
			name:    "condition_does_not_compile",
			mutate:  func(r *models.RuleRequest) { r.Condition = "amount >" },
			checkFn: ierr.IsValidation,
		},
		{
			name:    "condition_not_boolean",
			mutate:  func(r *models.RuleRequest) { r.Condition = "amount + 1.0" },
			checkFn: ierr.IsValidation,
		},
		{
			name:    "special_event_without_event",
			mutate:  func(r *models.RuleRequest) { r.Kind = models.RuleKindSpecialEvent },
			checkFn: ierr.IsValidation,
		},
		{
			name: "special_event_unknown_event",
			mutate: func(r *models.RuleRequest) {
				r.Kind = models.RuleKindSpecialEvent
				r.EventID = lo.ToPtr("evt_missing")
			},
			checkFn: ierr.IsNotFound,
		},
		{
			name: "special_event_known_event",
			mutate: func(r *models.RuleRequest) {
				r.Kind = models.RuleKindSpecialEvent
				r.EventID = lo.ToPtr(event.ID)
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := s.request("Rule", false)
			tc.mutate(req)
			rule, err := s.service.CreateRule(s.GetContext(), req)
			if tc.checkFn == nil {
				s.Require().NoError(err)
				s.Equal(req.Kind, rule.Kind)
				return
			}
			s.Nil(rule)
			s.True(tc.checkFn(err), "unexpected error: %v", err)
		})
	}
}
