package services

import (
	"context"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
)

type EventServiceImpl struct {
	ServiceParams
}

var _ EventService = (*EventServiceImpl)(nil)

func NewEventService(params ServiceParams) *EventServiceImpl {
	return &EventServiceImpl{ServiceParams: params.withDefaults()}
}

func validateEventRequest(req *models.EventRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ierr.NewError("name is required").
			WithHint("Event name is required").
			Mark(ierr.ErrValidation)
	}
	if req.StartsAt.After(req.EndsAt) {
		return ierr.NewError("start time cannot be after end time").
			WithHint("Event start cannot be after its end").
			Mark(ierr.ErrValidation)
	}
	if req.BonusVoucherCount < 0 {
		return ierr.NewError("negative bonus").
			WithHint("Bonus voucher count must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, req *models.EventRequest) (*models.Event, error) {
	if err := validateEventRequest(req); err != nil {
		return nil, err
	}
	now := s.now()
	event := &models.Event{
		ID:                models.GenerateID(models.IDPrefixEvent),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		StartsAt:          req.StartsAt,
		EndsAt:            req.EndsAt,
		BonusVoucherCount: req.BonusVoucherCount,
		Active:            req.Active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id string, req *models.EventRequest) (*models.Event, error) {
	if err := validateEventRequest(req); err != nil {
		return nil, err
	}
	event, err := s.Events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Name = strings.TrimSpace(req.Name)
	event.Description = req.Description
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.BonusVoucherCount = req.BonusVoucherCount
	event.Active = req.Active
	event.UpdatedAt = s.now()
	if err := s.Events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.Events.FindByID(ctx, id)
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, page, limit int) ([]*models.Event, error) {
	return s.Events.FindAll(ctx, page, limit)
}

// ListActiveEvents returns events switched on and running right now
func (s *EventServiceImpl) ListActiveEvents(ctx context.Context) ([]*models.Event, error) {
	return s.Events.FindActiveAt(ctx, s.now())
}
