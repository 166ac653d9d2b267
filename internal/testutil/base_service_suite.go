package testutil

import (
	"context"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *InMemoryDB
	stores    repositories.Stores
	publisher *InMemoryPublisher
	metrics   *metrics.Metrics
	logger    *logger.Logger
	location  *time.Location
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.logger = logger.NewNop()

	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		s.T().Fatalf("failed to load location: %v", err)
	}
	s.location = loc
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = NewInMemoryDB()
	s.stores = s.db.Stores()
	s.publisher = NewInMemoryPublisher()
	s.metrics = metrics.New(prometheus.NewRegistry())
	// Wednesday 2025-01-15 10:00 local time
	s.now = time.Date(2025, 1, 15, 10, 0, 0, 0, s.location)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

// ClearStores drops every row from the in-memory database
func (s *BaseServiceTestSuite) ClearStores() {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetDB() *InMemoryDB {
	return s.db
}

func (s *BaseServiceTestSuite) GetStores() repositories.Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisher {
	return s.publisher
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetLocation() *time.Location {
	return s.location
}

// GetNow returns the frozen clock reading for the current test
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// SetNow moves the frozen clock
func (s *BaseServiceTestSuite) SetNow(t time.Time) {
	s.now = t
}

// Clock returns a now function reading the suite clock
func (s *BaseServiceTestSuite) Clock() func() time.Time {
	return func() time.Time { return s.now }
}

// CreateMember stores a member with the given tier
func (s *BaseServiceTestSuite) CreateMember(tier models.MemberTier) *models.Member {
	m := &models.Member{
		ID:        models.GenerateID(models.IDPrefixMember),
		Name:      "Test Member",
		Phone:     "081234567890",
		Tier:      tier,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.stores.Members.Create(s.ctx, m))
	return m
}

// CreateActiveRule stores an active MINIMUM_SPEND rule
func (s *BaseServiceTestSuite) CreateActiveRule(minimum int64, perMatch int) *models.Rule {
	r := &models.Rule{
		ID:               models.GenerateID(models.IDPrefixRule),
		Name:             "Minimum spend",
		Kind:             models.RuleKindMinimumSpend,
		MinimumValue:     decimal.NewFromInt(minimum),
		VouchersPerMatch: perMatch,
		ValidityDays:     30,
		Active:           true,
		CreatedAt:        s.now,
		UpdatedAt:        s.now,
	}
	s.Require().NoError(s.stores.Rules.Create(s.ctx, r))
	return r
}

// CreateVoucher stores an ACTIVE voucher with a lottery number
func (s *BaseServiceTestSuite) CreateVoucher(memberID, code string, expiresAt time.Time) *models.Voucher {
	lottery := "1234-5678-9012"
	v := &models.Voucher{
		ID:            models.GenerateID(models.IDPrefixVoucher),
		Code:          code,
		LotteryNumber: &lottery,
		MemberID:      memberID,
		TransactionID: models.GenerateID(models.IDPrefixTransaction),
		RuleID:        models.GenerateID(models.IDPrefixRule),
		Status:        models.VoucherStatusActive,
		ExpiresAt:     expiresAt,
		CreatedAt:     s.now,
		UpdatedAt:     s.now,
	}
	s.Require().NoError(s.stores.Vouchers.Create(s.ctx, v))
	return v
}

// CreateTransaction stores a purchase for memberID without evaluating rules
func (s *BaseServiceTestSuite) CreateTransaction(memberID, receipt string, amount int64) *models.Transaction {
	t := &models.Transaction{
		ID:          models.GenerateID(models.IDPrefixTransaction),
		ReceiptCode: receipt,
		MemberID:    memberID,
		Amount:      decimal.NewFromInt(amount),
		PurchasedAt: s.now,
		CreatedAt:   s.now,
	}
	s.Require().NoError(s.stores.Transactions.Create(s.ctx, t))
	return t
}

// CreatePrize stores an active prize with the given stock
func (s *BaseServiceTestSuite) CreatePrize(name string, stock int) *models.Prize {
	p := &models.Prize{
		ID:        models.GenerateID(models.IDPrefixPrize),
		Name:      name,
		Stock:     stock,
		Active:    true,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.stores.Prizes.Create(s.ctx, p))
	return p
}
