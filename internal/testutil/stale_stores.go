package testutil

import (
	"context"
	"sync"

	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/samber/lo"
)

var (
	_ repositories.VoucherRepository = (*StaleVoucherStore)(nil)
	_ repositories.PrizeRepository   = (*StalePrizeStore)(nil)
	_ repositories.WinnerRepository  = (*StaleWinnerStore)(nil)
)

// The stale stores answer reads with the first value they saw for a key, the
// way a lagging snapshot would. Writes go through to the wrapped store, so
// the conditional updates are the only thing that can catch a lost race.

// snapshots remembers the first read per key
type snapshots[T any] struct {
	mu   sync.Mutex
	seen map[string]T
}

func (s *snapshots[T]) load(key string, read func() (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.seen[key]; ok {
		return v, nil
	}
	v, err := read()
	if err != nil {
		return v, err
	}
	if s.seen == nil {
		s.seen = make(map[string]T)
	}
	s.seen[key] = v
	return v, nil
}

// StaleVoucherStore serves FindByCode from the first snapshot of each code
type StaleVoucherStore struct {
	repositories.VoucherRepository
	byCode snapshots[models.Voucher]
}

func NewStaleVoucherStore(inner repositories.VoucherRepository) *StaleVoucherStore {
	return &StaleVoucherStore{VoucherRepository: inner}
}

func (s *StaleVoucherStore) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	v, err := s.byCode.load(code, func() (models.Voucher, error) {
		v, err := s.VoucherRepository.FindByCode(ctx, code)
		if err != nil {
			return models.Voucher{}, err
		}
		return *v, nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// StalePrizeStore serves FindByID from the first snapshot of each prize
type StalePrizeStore struct {
	repositories.PrizeRepository
	byID snapshots[models.Prize]
}

func NewStalePrizeStore(inner repositories.PrizeRepository) *StalePrizeStore {
	return &StalePrizeStore{PrizeRepository: inner}
}

func (s *StalePrizeStore) FindByID(ctx context.Context, id string) (*models.Prize, error) {
	p, err := s.byID.load(id, func() (models.Prize, error) {
		p, err := s.PrizeRepository.FindByID(ctx, id)
		if err != nil {
			return models.Prize{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// StaleWinnerStore serves FindByDrawID from the first snapshot of each draw
type StaleWinnerStore struct {
	repositories.WinnerRepository
	byDraw snapshots[[]models.Winner]
}

func NewStaleWinnerStore(inner repositories.WinnerRepository) *StaleWinnerStore {
	return &StaleWinnerStore{WinnerRepository: inner}
}

func (s *StaleWinnerStore) FindByDrawID(ctx context.Context, drawID string) ([]*models.Winner, error) {
	ws, err := s.byDraw.load(drawID, func() ([]models.Winner, error) {
		ws, err := s.WinnerRepository.FindByDrawID(ctx, drawID)
		if err != nil {
			return nil, err
		}
		return lo.Map(ws, func(w *models.Winner, _ int) models.Winner { return *w }), nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(ws, func(w models.Winner, _ int) *models.Winner { return &w }), nil
}
