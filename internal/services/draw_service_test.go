package services

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type DrawServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *DrawServiceImpl
	member  *models.Member
}

func TestDrawService(t *testing.T) {
	suite.Run(t, new(DrawServiceSuite))
}

func (s *DrawServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDrawService(newTestParams(&s.BaseServiceTestSuite))
	s.member = s.CreateMember(models.MemberTierBronze)
}

func (s *DrawServiceSuite) createDraw() *models.LotteryDraw {
	draw, err := s.service.CreateDraw(s.GetContext(), &models.CreateDrawRequest{
		Name:     "January draw",
		StartsAt: s.GetNow().Add(-24 * time.Hour),
		EndsAt:   s.GetNow().Add(24 * time.Hour),
	})
	s.Require().NoError(err)
	return draw
}

func (s *DrawServiceSuite) createPool(n int) []*models.Voucher {
	return lo.Times(n, func(i int) *models.Voucher {
		return s.CreateVoucher(s.member.ID, fmt.Sprintf("VCH-20250115-P%04d", i), s.GetNow().Add(72*time.Hour))
	})
}

func (s *DrawServiceSuite) TestCreateDrawValidation() {
	_, err := s.service.CreateDraw(s.GetContext(), &models.CreateDrawRequest{
		Name:     "Backwards",
		StartsAt: s.GetNow(),
		EndsAt:   s.GetNow().Add(-time.Hour),
	})
	s.True(ierr.IsValidation(err))
}

func (s *DrawServiceSuite) TestRunLotteryDraw() {
	draw := s.createDraw()
	pool := s.createPool(5)

	result, err := s.service.RunLotteryDraw(s.GetContext(), draw.ID, 3)
	s.Require().NoError(err)
	s.Equal(5, result.PoolSize)
	s.Require().Len(result.Winners, 3)
	s.Equal(3, result.Draw.PrizesDistributed)

	poolIDs := lo.Map(pool, func(v *models.Voucher, _ int) string { return v.ID })
	winnerVouchers := lo.Map(result.Winners, func(w *models.Winner, _ int) string { return w.VoucherID })
	s.Len(lo.Uniq(winnerVouchers), 3, "winners must be distinct")
	s.Subset(poolIDs, winnerVouchers)
	for _, w := range result.Winners {
		s.Equal(models.WinnerStatusNotChosen, w.Status)
		s.Nil(w.PrizeID)
		s.Equal("1234-5678-9012", w.LotteryNumber)
	}

	stored, err := s.service.ListWinners(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Len(stored, 3)

	// a second run only draws from vouchers that have not won yet
	result, err = s.service.RunLotteryDraw(s.GetContext(), draw.ID, 2)
	s.Require().NoError(err)
	s.Equal(2, result.PoolSize)
	s.Empty(lo.Intersect(winnerVouchers, lo.Map(result.Winners, func(w *models.Winner, _ int) string { return w.VoucherID })))
	s.Equal(5, result.Draw.PrizesDistributed)
}

func (s *DrawServiceSuite) TestRunLotteryDrawFailures() {
	draw := s.createDraw()

	_, err := s.service.RunLotteryDraw(s.GetContext(), draw.ID, 1)
	s.True(ierr.IsValidation(err), "empty pool")

	s.createPool(2)
	_, err = s.service.RunLotteryDraw(s.GetContext(), draw.ID, 3)
	s.True(ierr.IsValidation(err), "pool smaller than winner count")

	winners, err := s.service.ListWinners(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Empty(winners, "failed draws persist nothing")

	_, err = s.service.RunLotteryDraw(s.GetContext(), "draw_missing", 1)
	s.True(ierr.IsNotFound(err))

	_, err = s.service.RunLotteryDraw(s.GetContext(), draw.ID, 0)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CompleteDraw(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	_, err = s.service.RunLotteryDraw(s.GetContext(), draw.ID, 1)
	s.True(ierr.IsInvalidState(err))
}

func (s *DrawServiceSuite) TestRerunOnStaleWinnerListConflicts() {
	draw := s.createDraw()
	pool := s.createPool(1)

	params := newTestParams(&s.BaseServiceTestSuite)
	stores := s.GetStores()
	stores.Winners = testutil.NewStaleWinnerStore(stores.Winners)
	params.Stores = stores
	service := NewDrawService(params)

	_, err := service.RunLotteryDraw(s.GetContext(), draw.ID, 1)
	s.Require().NoError(err)

	// the stale read still offers the voucher that just won
	_, err = service.RunLotteryDraw(s.GetContext(), draw.ID, 1)
	s.Require().Error(err)
	s.True(ierr.IsConflict(err), "unexpected error kind: %v", err)

	winners, err := s.GetStores().Winners.FindByDrawID(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Require().Len(winners, 1)
	s.Equal(pool[0].ID, winners[0].VoucherID)

	stored, err := s.service.GetDraw(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.PrizesDistributed)
}

func (s *DrawServiceSuite) TestWinnerPerVoucherIsUnique() {
	draw := s.createDraw()
	v := s.createPool(1)[0]
	winner := func() *models.Winner {
		return &models.Winner{
			ID:        models.GenerateID(models.IDPrefixWinner),
			DrawID:    draw.ID,
			MemberID:  s.member.ID,
			VoucherID: v.ID,
			Status:    models.WinnerStatusNotChosen,
		}
	}

	s.Require().NoError(s.GetStores().Winners.CreateMany(s.GetContext(), []*models.Winner{winner()}))
	err := s.GetStores().Winners.CreateMany(s.GetContext(), []*models.Winner{winner()})
	s.True(ierr.IsConflict(err))
	err = s.GetStores().Winners.CreateMany(s.GetContext(), []*models.Winner{winner(), winner()})
	s.True(ierr.IsConflict(err))

	winners, err := s.GetStores().Winners.FindByDrawID(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Len(winners, 1)
}

func (s *DrawServiceSuite) TestPoolExcludesIneligibleVouchers() {
	draw := s.createDraw()
	s.createPool(2)

	lottery := "4821-1093-7710"
	ineligible := []*models.Voucher{
		// created before the draw window
		{Code: "VCH-20250110-OUT01", LotteryNumber: &lottery, CreatedAt: s.GetNow().Add(-72 * time.Hour)},
		// no lottery number
		{Code: "VCH-20250115-NOLOT", CreatedAt: s.GetNow()},
	}
	for _, v := range ineligible {
		v.ID = models.GenerateID(models.IDPrefixVoucher)
		v.MemberID = s.member.ID
		v.Status = models.VoucherStatusActive
		v.ExpiresAt = s.GetNow().Add(72 * time.Hour)
		s.Require().NoError(s.GetStores().Vouchers.Create(s.GetContext(), v))
	}
	used := s.CreateVoucher(s.member.ID, "VCH-20250115-USED1", s.GetNow().Add(72*time.Hour))
	ok, err := s.GetStores().Vouchers.TransitionStatus(s.GetContext(), used.ID, models.VoucherStatusChange{
		From: models.VoucherStatusActive,
		To:   models.VoucherStatusUsed,
		At:   s.GetNow(),
	})
	s.Require().NoError(err)
	s.Require().True(ok)

	_, err = s.service.RunLotteryDraw(s.GetContext(), draw.ID, 3)
	s.True(ierr.IsValidation(err))

	result, err := s.service.RunLotteryDraw(s.GetContext(), draw.ID, 2)
	s.Require().NoError(err)
	s.Equal(2, result.PoolSize)
}

func (s *DrawServiceSuite) TestSelectionIsUniform() {
	draw := s.createDraw()
	pool := s.createPool(5)

	rng := rand.New(rand.NewPCG(42, 1024))
	s.service.Intn = rng.IntN

	const trials = 20000
	hits := make(map[string]int)
	for i := 0; i < trials; i++ {
		selected := s.service.shuffle(pool)[:3]
		for _, v := range selected {
			hits[v.ID]++
		}
	}

	for _, v := range pool {
		p := float64(hits[v.ID]) / trials
		s.InDelta(0.6, p, 0.02, "voucher %s selected with probability %.3f", v.Code, p)
	}

	_, err := s.service.RunLotteryDraw(s.GetContext(), draw.ID, 3)
	s.Require().NoError(err)
}

func (s *DrawServiceSuite) TestCloseDraw() {
	draw := s.createDraw()

	cancelled, err := s.service.CancelDraw(s.GetContext(), draw.ID)
	s.Require().NoError(err)
	s.Equal(models.DrawStatusCancelled, cancelled.Status)

	_, err = s.service.CompleteDraw(s.GetContext(), draw.ID)
	s.True(ierr.IsInvalidState(err))

	other := s.createDraw()
	completed, err := s.service.CompleteDraw(s.GetContext(), other.ID)
	s.Require().NoError(err)
	s.Equal(models.DrawStatusCompleted, completed.Status)

	draws, err := s.service.ListDraws(s.GetContext(), 1, 10)
	s.Require().NoError(err)
	s.Len(draws, 2)
}
