package services

import (
	"strings"
	"testing"
	"time"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	"github.com/ArowuTest/retail-loyalty-backend/internal/utils"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service *TransactionServiceImpl
	member  *models.Member
}

func TestTransactionService(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func (s *TransactionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.service = newTestTransactionService(s.params)
	s.member = s.CreateMember(models.MemberTierGold)
}

func (s *TransactionServiceSuite) request(receipt string, amount int64) *models.RecordTransactionRequest {
	return &models.RecordTransactionRequest{
		MemberID:    s.member.ID,
		ReceiptCode: receipt,
		Amount:      decimal.NewFromInt(amount),
		AdminID:     "admin-1",
	}
}

// allVouchers lists every voucher of the test member
func (s *TransactionServiceSuite) allVouchers() []*models.Voucher {
	vouchers, err := s.GetStores().Vouchers.FindAll(s.GetContext(), models.VoucherFilter{MemberID: s.member.ID})
	s.Require().NoError(err)
	return vouchers
}

func (s *TransactionServiceSuite) TestRecordIssuesVouchers() {
	rule := s.CreateActiveRule(100_000, 2)

	result, err := s.service.RecordTransaction(s.GetContext(), s.request("RCPT-001", 150_000))
	s.Require().NoError(err)

	s.Equal("RCPT-001", result.Transaction.ReceiptCode)
	s.Require().Len(result.Vouchers, 2)
	for _, v := range result.Vouchers {
		s.True(utils.IsVoucherCode(v.Code), v.Code)
		s.Require().NotNil(v.LotteryNumber)
		s.True(utils.IsLotteryNumber(*v.LotteryNumber), *v.LotteryNumber)
		s.Equal(models.VoucherStatusActive, v.Status)
		s.Equal(rule.ID, v.RuleID)
		s.Equal(result.Transaction.ID, v.TransactionID)
		s.Equal(s.GetNow().AddDate(0, 0, 30), v.ExpiresAt)

		logs, err := s.GetStores().VoucherLogs.FindByVoucherID(s.GetContext(), v.ID)
		s.Require().NoError(err)
		s.Require().Len(logs, 1)
		s.Equal(models.VoucherActionCreated, logs[0].Action)
		s.Equal("created from transaction RCPT-001", logs[0].Note)
		s.Equal("admin-1", lo.FromPtr(logs[0].AdminID))
	}

	s.Len(s.GetPublisher().Events(publisher.EventTransactionRecorded), 1)
	s.Len(s.GetPublisher().Events(publisher.EventVoucherIssued), 2)
}

func (s *TransactionServiceSuite) TestRecordWithoutRuleStoresTransactionOnly() {
	result, err := s.service.RecordTransaction(s.GetContext(), s.request("RCPT-002", 150_000))
	s.Require().NoError(err)
	s.Empty(result.Vouchers)

	stored, err := s.service.GetTransaction(s.GetContext(), result.Transaction.ID)
	s.Require().NoError(err)
	s.Equal("RCPT-002", stored.ReceiptCode)
}

func (s *TransactionServiceSuite) TestMultipleOfAmountIssuesFlooredCount() {
	r := &models.Rule{
		ID:               models.GenerateID(models.IDPrefixRule),
		Name:             "Every 100k",
		Kind:             models.RuleKindMultipleOfAmount,
		MinimumValue:     decimal.NewFromInt(100_000),
		Divisor:          lo.ToPtr(decimal.NewFromInt(100_000)),
		VouchersPerMatch: 1,
		ValidityDays:     14,
		Active:           true,
	}
	s.Require().NoError(s.GetStores().Rules.Create(s.GetContext(), r))

	result, err := s.service.RecordTransaction(s.GetContext(), s.request("RCPT-003", 250_000))
	s.Require().NoError(err)
	s.Len(result.Vouchers, 2)
}

func (s *TransactionServiceSuite) TestMemberTierFeedsRule() {
	r := &models.Rule{
		ID:               models.GenerateID(models.IDPrefixRule),
		Name:             "Gold only",
		Kind:             models.RuleKindMemberExclusive,
		MemberTier:       "gold",
		VouchersPerMatch: 1,
		ValidityDays:     7,
		Active:           true,
	}
	s.Require().NoError(s.GetStores().Rules.Create(s.GetContext(), r))

	result, err := s.service.RecordTransaction(s.GetContext(), s.request("RCPT-004", 10))
	s.Require().NoError(err)
	s.Len(result.Vouchers, 1)
}

func (s *TransactionServiceSuite) TestFailures() {
	s.CreateActiveRule(100_000, 1)
	_, err := s.service.RecordTransaction(s.GetContext(), s.request("RCPT-DUP", 150_000))
	s.Require().NoError(err)

	testCases := []struct {
		name string
		req  *models.RecordTransactionRequest
		checkFn func(error) bool
	}{
		{
			name:    "duplicate_receipt",
			req:     s.request("RCPT-DUP", 150_000),
			checkFn: ierr.IsConflict,
		},
		{
			name: "unknown_member",
			req: &models.RecordTransactionRequest{
				MemberID:    "mbr_missing",
				ReceiptCode: "RCPT-X",
				Amount:      decimal.NewFromInt(1),
			},
			checkFn: ierr.IsNotFound,
		},
		{
			name:    "negative_amount",
			req:     s.request("RCPT-NEG", -1),
			checkFn: ierr.IsValidation,
		},
		{
			name:    "missing_receipt",
			req:     s.request(" ", 10),
			checkFn: ierr.IsValidation,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			result, err := s.service.RecordTransaction(s.GetContext(), tc.req)
			s.Error(err)
			s.Nil(result)
			s.True(tc.checkFn(err), "unexpected error kind: %v", err)
		})
	}

	s.Len(s.allVouchers(), 1, "failed requests must not issue vouchers")
}

func (s *TransactionServiceSuite) TestAmountAboveCeilingRejected() {
	s.CreateActiveRule(100_000, 1)
	params := s.params
	params.MaxTransactionAmount = decimal.NewFromInt(1_000_000)
	service := newTestTransactionService(params)

	_, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-CEIL", 1_000_000))
	s.Require().NoError(err, "the ceiling itself is accepted")

	huge, err := decimal.NewFromString("92233720368547758070000")
	s.Require().NoError(err)
	for name, amount := range map[string]decimal.Decimal{
		"just_above": decimal.NewFromInt(1_000_001),
		"beyond_int": huge,
	} {
		s.Run(name, func() {
			req := s.request("RCPT-"+name, 0)
			req.Amount = amount
			result, err := service.RecordTransaction(s.GetContext(), req)
			s.Require().Error(err)
			s.Nil(result)
			s.True(ierr.IsValidation(err), "unexpected error kind: %v", err)

			_, err = s.GetStores().Transactions.FindByReceiptCode(s.GetContext(), req.ReceiptCode)
			s.True(ierr.IsNotFound(err))
		})
	}
	s.Len(s.allVouchers(), 1)
}

func (s *TransactionServiceSuite) TestVoucherLimitRejectsTransaction() {
	r := &models.Rule{
		ID:               models.GenerateID(models.IDPrefixRule),
		Name:             "Every rupiah",
		Kind:             models.RuleKindMultipleOfAmount,
		MinimumValue:     decimal.NewFromInt(1),
		Divisor:          lo.ToPtr(decimal.NewFromInt(1)),
		VouchersPerMatch: 3,
		ValidityDays:     14,
		Active:           true,
	}
	s.Require().NoError(s.GetStores().Rules.Create(s.GetContext(), r))

	params := s.params
	params.MaxVouchersPerTransaction = 30
	service := newTestTransactionService(params)

	result, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-AT-CAP", 10))
	s.Require().NoError(err)
	s.Len(result.Vouchers, 30)

	result, err = service.RecordTransaction(s.GetContext(), s.request("RCPT-OVER-CAP", 11))
	s.Require().Error(err)
	s.Nil(result)
	s.True(ierr.IsValidation(err), "unexpected error kind: %v", err)
	s.True(models.IsVoucherLimit(err))

	// the default ceiling admits amounts whose multiples overflow an int
	result, err = s.service.RecordTransaction(s.GetContext(), s.request("RCPT-HUGE", 999_999_999_999))
	s.Require().Error(err)
	s.Nil(result)
	s.True(models.IsVoucherLimit(err))

	s.Len(s.allVouchers(), 30)
	_, err = s.GetStores().Transactions.FindByReceiptCode(s.GetContext(), "RCPT-OVER-CAP")
	s.True(ierr.IsNotFound(err), "rejected purchase must not be stored")
}

func (s *TransactionServiceSuite) TestIssuerRejectsOversizedPlans() {
	issuer := NewVoucherIssuer(s.params)
	txn := &models.Transaction{ID: models.GenerateID(models.IDPrefixTransaction), MemberID: s.member.ID, ReceiptCode: "RCPT-PLAN"}

	for name, count := range map[string]int{"over_cap": models.DefaultMaxVouchersPerTransaction + 1, "negative": -1} {
		s.Run(name, func() {
			vouchers, err := issuer.Issue(s.GetContext(), txn, "admin-1", []*models.VoucherPlan{{Count: count, ValidityDays: 7}})
			s.Require().Error(err)
			s.Nil(vouchers)
			s.True(ierr.IsValidation(err))
		})
	}
	s.Empty(s.allVouchers())
}

func (s *TransactionServiceSuite) TestVoucherCodeUsesStoreDate() {
	s.CreateActiveRule(100_000, 1)
	params := s.params
	// 20:00 UTC on the 15th is already the 16th in the store timezone
	params.Now = func() time.Time { return time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC) }
	service := newTestTransactionService(params)

	result, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-MIDNIGHT", 150_000))
	s.Require().NoError(err)
	s.Require().Len(result.Vouchers, 1)
	s.True(strings.HasPrefix(result.Vouchers[0].Code, "VCH-20250116-"), result.Vouchers[0].Code)
}

func (s *TransactionServiceSuite) TestStoreFaultRollsBackEverything() {
	s.CreateActiveRule(100_000, 5)

	params := s.params
	stores := s.GetStores()
	stores.Vouchers = testutil.NewFaultyVoucherStore(stores.Vouchers, 2)
	params.Stores = stores
	service := newTestTransactionService(params)

	_, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-FAULT", 150_000))
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))

	s.Empty(s.allVouchers())
	_, err = s.GetStores().Transactions.FindByReceiptCode(s.GetContext(), "RCPT-FAULT")
	s.True(ierr.IsNotFound(err), "transaction must be rolled back")
	s.Empty(s.GetPublisher().Events(""))
}

func (s *TransactionServiceSuite) TestCodeCollisionExhaustsRetries() {
	s.CreateActiveRule(100_000, 1)
	taken := "VCH-20250115-AAAAA"
	s.CreateVoucher(s.member.ID, taken, s.GetNow().Add(time.Hour))

	codes := testutil.NewScriptedCodeGenerator(taken)
	params := s.params
	params.Codes = codes
	service := newTestTransactionService(params)

	_, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-COLLIDE", 150_000))
	s.Require().Error(err)
	s.True(ierr.IsIntegrity(err))
	s.Equal(5, codes.Calls)

	s.Len(s.allVouchers(), 1)
	_, err = s.GetStores().Transactions.FindByReceiptCode(s.GetContext(), "RCPT-COLLIDE")
	s.True(ierr.IsNotFound(err))
}

func (s *TransactionServiceSuite) TestCodeCollisionRecovers() {
	s.CreateActiveRule(100_000, 1)
	taken := "VCH-20250115-AAAAA"
	s.CreateVoucher(s.member.ID, taken, s.GetNow().Add(time.Hour))

	params := s.params
	params.Codes = testutil.NewScriptedCodeGenerator(taken, taken, "VCH-20250115-BBBBB")
	service := newTestTransactionService(params)

	result, err := service.RecordTransaction(s.GetContext(), s.request("RCPT-RETRY", 150_000))
	s.Require().NoError(err)
	s.Require().Len(result.Vouchers, 1)
	s.Equal("VCH-20250115-BBBBB", result.Vouchers[0].Code)
}

func (s *TransactionServiceSuite) TestListTransactionsByMember() {
	for _, receipt := range []string{"R-1", "R-2", "R-3"} {
		_, err := s.service.RecordTransaction(s.GetContext(), s.request(receipt, 10))
		s.Require().NoError(err)
	}

	txns, err := s.service.ListTransactionsByMember(s.GetContext(), s.member.ID, 1, 2)
	s.Require().NoError(err)
	s.Len(txns, 2)

	_, err = s.service.ListTransactionsByMember(s.GetContext(), "mbr_missing", 1, 10)
	s.True(ierr.IsNotFound(err))
}
