package testutil

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/samber/lo"
)

var (
	_ repositories.VoucherRepository = (*InMemoryVoucherStore)(nil)
	_ repositories.VoucherRepository = (*FaultyVoucherStore)(nil)
)

// InMemoryVoucherStore implements repositories.VoucherRepository
type InMemoryVoucherStore struct{ db *InMemoryDB }

func (s *InMemoryVoucherStore) Create(ctx context.Context, v *models.Voucher) error {
	defer s.db.lock(ctx)()
	for _, existing := range s.db.vouchers {
		if existing.Code == v.Code {
			return conflict("Voucher code already exists")
		}
	}
	s.db.vouchers[v.ID] = *v
	s.db.track(v.ID)
	return nil
}

func (s *InMemoryVoucherStore) FindByID(ctx context.Context, id string) (*models.Voucher, error) {
	defer s.db.lock(ctx)()
	v, ok := s.db.vouchers[id]
	if !ok {
		return nil, notFound("Voucher", id)
	}
	return &v, nil
}

func (s *InMemoryVoucherStore) FindByCode(ctx context.Context, code string) (*models.Voucher, error) {
	defer s.db.lock(ctx)()
	for _, v := range s.db.vouchers {
		if strings.EqualFold(v.Code, code) {
			return &v, nil
		}
	}
	return nil, notFound("Voucher", code)
}

func (s *InMemoryVoucherStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	defer s.db.lock(ctx)()
	for _, v := range s.db.vouchers {
		if v.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryVoucherStore) FindAll(ctx context.Context, filter models.VoucherFilter) ([]*models.Voucher, error) {
	defer s.db.lock(ctx)()
	out := lo.FilterMap(lo.Values(s.db.vouchers), func(v models.Voucher, _ int) (*models.Voucher, bool) {
		if filter.MemberID != "" && v.MemberID != filter.MemberID {
			return nil, false
		}
		if filter.Status != "" && v.Status != filter.Status {
			return nil, false
		}
		return &v, true
	})
	sort.Slice(out, func(i, j int) bool { return s.db.order[out[i].ID] > s.db.order[out[j].ID] })
	return page(out, filter.Page, filter.Limit), nil
}

func (s *InMemoryVoucherStore) FindExpirable(ctx context.Context, now time.Time, limit int) ([]*models.Voucher, error) {
	defer s.db.lock(ctx)()
	out := lo.FilterMap(lo.Values(s.db.vouchers), func(v models.Voucher, _ int) (*models.Voucher, bool) {
		return &v, v.Status == models.VoucherStatusActive && v.ExpiresAt.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return page(out, 1, limit), nil
}

func (s *InMemoryVoucherStore) FindLotteryEligible(ctx context.Context, start, end time.Time) ([]*models.Voucher, error) {
	defer s.db.lock(ctx)()
	out := lo.FilterMap(lo.Values(s.db.vouchers), func(v models.Voucher, _ int) (*models.Voucher, bool) {
		ok := v.Status == models.VoucherStatusActive &&
			v.LotteryNumber != nil &&
			!v.CreatedAt.Before(start) && !v.CreatedAt.After(end)
		return &v, ok
	})
	sort.Slice(out, func(i, j int) bool { return s.db.order[out[i].ID] < s.db.order[out[j].ID] })
	return out, nil
}

func (s *InMemoryVoucherStore) TransitionStatus(ctx context.Context, id string, change models.VoucherStatusChange) (bool, error) {
	defer s.db.lock(ctx)()
	v, ok := s.db.vouchers[id]
	if !ok || v.Status != change.From {
		return false, nil
	}
	v.Status = change.To
	v.UpdatedAt = change.At
	if change.To == models.VoucherStatusUsed {
		v.UsedAt = lo.ToPtr(change.At)
		v.UsedTransactionID = change.UsedTransactionID
	}
	s.db.vouchers[id] = v
	return true, nil
}

// FaultyVoucherStore wraps a voucher repository and fails Create once
// FailOnCreate successful creates have gone through. Zero disables the fault.
type FaultyVoucherStore struct {
	repositories.VoucherRepository
	FailOnCreate int64

	creates atomic.Int64
}

// NewFaultyVoucherStore fails the create after the first n succeed.
func NewFaultyVoucherStore(inner repositories.VoucherRepository, n int64) *FaultyVoucherStore {
	return &FaultyVoucherStore{VoucherRepository: inner, FailOnCreate: n}
}

func (s *FaultyVoucherStore) Create(ctx context.Context, v *models.Voucher) error {
	if s.FailOnCreate > 0 && s.creates.Load() >= s.FailOnCreate {
		return ierr.NewError("injected storage failure").
			WithHint("Storage unavailable").
			Mark(ierr.ErrDatabase)
	}
	if err := s.VoucherRepository.Create(ctx, v); err != nil {
		return err
	}
	s.creates.Add(1)
	return nil
}
