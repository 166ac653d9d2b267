package services

import (
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type PrizeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *PrizeServiceImpl
}

func TestPrizeService(t *testing.T) {
	suite.Run(t, new(PrizeServiceSuite))
}

func (s *PrizeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPrizeService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *PrizeServiceSuite) TestListAvailablePrizes() {
	create := func(name string, stock int, active bool, from, until *time.Time) *models.Prize {
		p, err := s.service.CreatePrize(s.GetContext(), &models.PrizeRequest{
			Name:           name,
			Stock:          stock,
			Active:         active,
			AvailableFrom:  from,
			AvailableUntil: until,
		})
		s.Require().NoError(err)
		return p
	}
	now := s.GetNow()
	available := create("Watch", 3, true, lo.ToPtr(now.Add(-time.Hour)), lo.ToPtr(now.Add(time.Hour)))
	create("Inactive", 3, false, nil, nil)
	create("Empty", 0, true, nil, nil)
	create("Later", 3, true, lo.ToPtr(now.Add(time.Hour)), nil)
	create("Gone", 3, true, nil, lo.ToPtr(now.Add(-time.Hour)))

	ok, err := s.GetStores().Prizes.ConsumeStock(s.GetContext(), available.ID)
	s.Require().NoError(err)
	s.Require().True(ok)

	prizes, err := s.service.ListAvailablePrizes(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(prizes, 1)
	s.Equal(available.ID, prizes[0].ID)
	s.Equal(2, prizes[0].RemainingStock)
}

func (s *PrizeServiceSuite) TestUpdatePrizeKeepsStockAboveConsumed() {
	p, err := s.service.CreatePrize(s.GetContext(), &models.PrizeRequest{Name: "Voucher book", Stock: 2, Active: true})
	s.Require().NoError(err)
	for i := 0; i < 2; i++ {
		ok, err := s.GetStores().Prizes.ConsumeStock(s.GetContext(), p.ID)
		s.Require().NoError(err)
		s.Require().True(ok)
	}

	_, err = s.service.UpdatePrize(s.GetContext(), p.ID, &models.PrizeRequest{Name: "Voucher book", Stock: 1, Active: true})
	s.True(ierr.IsConflict(err))

	updated, err := s.service.UpdatePrize(s.GetContext(), p.ID, &models.PrizeRequest{Name: "Voucher book XL", Stock: 4, Active: true})
	s.Require().NoError(err)
	s.Equal(4, updated.Stock)
	s.Equal(2, updated.StockConsumed)
	s.Equal(2, updated.Remaining())

	_, err = s.service.CreatePrize(s.GetContext(), &models.PrizeRequest{Name: "Bad", Stock: -1})
	s.True(ierr.IsValidation(err))
}
