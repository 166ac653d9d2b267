package services

import (
	"context"
	"strings"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/samber/lo"
)

// PrizeServiceImpl manages prize inventory
type PrizeServiceImpl struct {
	ServiceParams
}

var _ PrizeService = (*PrizeServiceImpl)(nil)

func NewPrizeService(params ServiceParams) *PrizeServiceImpl {
	return &PrizeServiceImpl{ServiceParams: params.withDefaults()}
}

func validatePrizeRequest(req *models.PrizeRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ierr.NewError("prize name is required").
			WithHint("Prize name is required").
			Mark(ierr.ErrValidation)
	}
	if req.Stock < 0 {
		return ierr.NewError("negative stock").
			WithHint("Stock must not be negative").
			Mark(ierr.ErrValidation)
	}
	if req.AvailableFrom != nil && req.AvailableUntil != nil && req.AvailableUntil.Before(*req.AvailableFrom) {
		return ierr.NewError("availability window is inverted").
			WithHint("Availability end must not be before its start").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (s *PrizeServiceImpl) CreatePrize(ctx context.Context, req *models.PrizeRequest) (*models.Prize, error) {
	if err := validatePrizeRequest(req); err != nil {
		return nil, err
	}
	now := s.now()
	prize := &models.Prize{
		ID:             models.GenerateID(models.IDPrefixPrize),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Category:       req.Category,
		Value:          req.Value,
		ImageURL:       req.ImageURL,
		Stock:          req.Stock,
		Active:         req.Active,
		AvailableFrom:  req.AvailableFrom,
		AvailableUntil: req.AvailableUntil,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Prizes.Create(ctx, prize); err != nil {
		return nil, err
	}
	return prize, nil
}

// UpdatePrize replaces the descriptive fields and stock. Stock can never drop
// below what winners have already consumed.
func (s *PrizeServiceImpl) UpdatePrize(ctx context.Context, id string, req *models.PrizeRequest) (*models.Prize, error) {
	if err := validatePrizeRequest(req); err != nil {
		return nil, err
	}
	prize, err := s.Prizes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Stock < prize.StockConsumed {
		return nil, stockBelowConsumed(prize, req.Stock)
	}

	prize.Name = strings.TrimSpace(req.Name)
	prize.Description = req.Description
	prize.Category = req.Category
	prize.Value = req.Value
	prize.ImageURL = req.ImageURL
	prize.Stock = req.Stock
	prize.Active = req.Active
	prize.AvailableFrom = req.AvailableFrom
	prize.AvailableUntil = req.AvailableUntil
	prize.UpdatedAt = s.now()

	ok, err := s.Prizes.Update(ctx, prize)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.Metrics.Conflicts.WithLabelValues("update_prize").Inc()
		return nil, stockBelowConsumed(prize, req.Stock)
	}
	return s.Prizes.FindByID(ctx, id)
}

func stockBelowConsumed(prize *models.Prize, stock int) error {
	return ierr.NewError("stock below consumed").
		WithHintf("Stock cannot be lower than the %d units already chosen", prize.StockConsumed).
		WithReportableDetails(map[string]any{"prize_id": prize.ID, "stock": stock, "consumed": prize.StockConsumed}).
		Mark(ierr.ErrConflict)
}

func (s *PrizeServiceImpl) GetPrize(ctx context.Context, id string) (*models.Prize, error) {
	return s.Prizes.FindByID(ctx, id)
}

func (s *PrizeServiceImpl) ListPrizes(ctx context.Context, page, limit int) ([]*models.Prize, error) {
	return s.Prizes.FindAll(ctx, page, limit)
}

// ListAvailablePrizes returns prizes a winner could pick right now, with the
// remaining stock derived from stock and consumed.
func (s *PrizeServiceImpl) ListAvailablePrizes(ctx context.Context) ([]*models.AvailablePrize, error) {
	now := s.now()
	prizes, err := s.Prizes.FindAvailable(ctx, now)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(prizes, func(p *models.Prize, _ int) (*models.AvailablePrize, bool) {
		return &models.AvailablePrize{Prize: p, RemainingStock: p.Remaining()}, p.AvailableAt(now)
	}), nil
}
