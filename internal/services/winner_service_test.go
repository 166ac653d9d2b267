package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type WinnerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *WinnerServiceImpl
	draws   *DrawServiceImpl
	winners []*models.Winner
}

func TestWinnerService(t *testing.T) {
	suite.Run(t, new(WinnerServiceSuite))
}

func (s *WinnerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.service = NewWinnerService(params)
	s.draws = NewDrawService(params)

	member := s.CreateMember(models.MemberTierVIP)
	for _, code := range []string{"VCH-20250115-WIN01", "VCH-20250115-WIN02", "VCH-20250115-WIN03"} {
		s.CreateVoucher(member.ID, code, s.GetNow().Add(72*time.Hour))
	}
	draw, err := s.draws.CreateDraw(s.GetContext(), &models.CreateDrawRequest{
		Name:     "Weekly",
		StartsAt: s.GetNow().Add(-time.Hour),
		EndsAt:   s.GetNow().Add(time.Hour),
	})
	s.Require().NoError(err)
	result, err := s.draws.RunLotteryDraw(s.GetContext(), draw.ID, 3)
	s.Require().NoError(err)
	s.winners = result.Winners
}

func (s *WinnerServiceSuite) TestChooseAndCollect() {
	prize := s.CreatePrize("Smartwatch", 5)
	winner := s.winners[0]

	chosen, err := s.service.ChoosePrizeForWinner(s.GetContext(), winner.ID, prize.ID)
	s.Require().NoError(err)
	s.Equal(models.WinnerStatusChosen, chosen.Status)
	s.Equal(prize.ID, lo.FromPtr(chosen.PrizeID))
	s.Require().NotNil(chosen.ChosenAt)

	stored, err := s.GetStores().Prizes.FindByID(s.GetContext(), prize.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.StockConsumed)

	_, err = s.service.ChoosePrizeForWinner(s.GetContext(), winner.ID, prize.ID)
	s.True(ierr.IsInvalidState(err), "winner already chose")

	_, err = s.service.CollectPrize(s.GetContext(), s.winners[1].ID, "admin-1", "")
	s.True(ierr.IsInvalidState(err), "nothing chosen yet")

	collected, err := s.service.CollectPrize(s.GetContext(), winner.ID, "admin-1", "handed over at store")
	s.Require().NoError(err)
	s.Equal(models.WinnerStatusCollected, collected.Status)
	s.Equal("admin-1", lo.FromPtr(collected.CollectedBy))
	s.Equal("handed over at store", collected.CollectionNote)
	s.Require().NotNil(collected.CollectedAt)

	_, err = s.service.CollectPrize(s.GetContext(), winner.ID, "admin-1", "")
	s.True(ierr.IsInvalidState(err), "already collected")
}

func (s *WinnerServiceSuite) TestChoosePrizeRejectsUnavailablePrizes() {
	inactive := s.CreatePrize("Retired", 5)
	inactive.Active = false
	_, err := s.GetStores().Prizes.Update(s.GetContext(), inactive)
	s.Require().NoError(err)

	future := s.CreatePrize("Future", 5)
	future.AvailableFrom = lo.ToPtr(s.GetNow().Add(24 * time.Hour))
	_, err = s.GetStores().Prizes.Update(s.GetContext(), future)
	s.Require().NoError(err)

	past := s.CreatePrize("Past", 5)
	past.AvailableUntil = lo.ToPtr(s.GetNow().Add(-24 * time.Hour))
	_, err = s.GetStores().Prizes.Update(s.GetContext(), past)
	s.Require().NoError(err)

	empty := s.CreatePrize("Empty", 0)

	testCases := []struct {
		name    string
		prizeID string
		checkFn  func(error) bool
		hintPart string
	}{
		{name: "missing", prizeID: "prz_missing", checkFn: ierr.IsNotFound},
		{name: "inactive", prizeID: inactive.ID, checkFn: ierr.IsInvalidState, hintPart: "not active"},
		{name: "not_yet_available", prizeID: future.ID, checkFn: ierr.IsInvalidState, hintPart: "available from"},
		{name: "no_longer_available", prizeID: past.ID, checkFn: ierr.IsInvalidState, hintPart: "available until"},
		{name: "out_of_stock", prizeID: empty.ID, checkFn: ierr.IsConflict, hintPart: "out of stock"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w, err := s.service.ChoosePrizeForWinner(s.GetContext(), s.winners[0].ID, tc.prizeID)
			s.Nil(w)
			s.True(tc.checkFn(err), "unexpected error kind: %v", err)
			if tc.hintPart != "" {
				s.Contains(ierr.Hint(err, ""), tc.hintPart)
			}
		})
	}

	winner, err := s.service.GetWinner(s.GetContext(), s.winners[0].ID)
	s.Require().NoError(err)
	s.Equal(models.WinnerStatusNotChosen, winner.Status)
}

func (s *WinnerServiceSuite) TestLastUnitGoesToOneWinner() {
	prize := s.CreatePrize("Limited edition", 1)

	var chosen, exhausted atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for _, w := range s.winners {
		g.Go(func() error {
			_, err := s.service.ChoosePrizeForWinner(ctx, w.ID, prize.ID)
			switch {
			case err == nil:
				chosen.Add(1)
			case ierr.IsConflict(err):
				exhausted.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Equal(int32(1), chosen.Load())
	s.Equal(int32(len(s.winners)-1), exhausted.Load())

	stored, err := s.GetStores().Prizes.FindByID(s.GetContext(), prize.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.StockConsumed)
	s.Zero(stored.Remaining())
}

func (s *WinnerServiceSuite) TestStaleStockReadLosesOnConsume() {
	prize := s.CreatePrize("Limited edition", 1)

	params := newTestParams(&s.BaseServiceTestSuite)
	stores := s.GetStores()
	stores.Prizes = testutil.NewStalePrizeStore(stores.Prizes)
	params.Stores = stores
	service := NewWinnerService(params)
	conflicts := s.GetMetrics().Conflicts.WithLabelValues("choose_prize")
	before := promtest.ToFloat64(conflicts)

	first, second := s.winners[0], s.winners[1]
	_, err := service.ChoosePrizeForWinner(s.GetContext(), first.ID, prize.ID)
	s.Require().NoError(err)

	// the second read still shows one unit left
	_, err = service.ChoosePrizeForWinner(s.GetContext(), second.ID, prize.ID)
	s.Require().Error(err)
	s.True(ierr.IsConflict(err), "unexpected error kind: %v", err)
	s.Equal("Limited edition is out of stock", ierr.Hint(err, ""))
	s.Equal(before+1, promtest.ToFloat64(conflicts))

	stored, err := s.GetStores().Prizes.FindByID(s.GetContext(), prize.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.StockConsumed)

	statuses := lo.Map([]*models.Winner{first, second}, func(w *models.Winner, _ int) models.WinnerStatus {
		stored, err := s.GetStores().Winners.FindByID(s.GetContext(), w.ID)
		s.Require().NoError(err)
		return stored.Status
	})
	s.Equal([]models.WinnerStatus{models.WinnerStatusChosen, models.WinnerStatusNotChosen}, statuses)
}
