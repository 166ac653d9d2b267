package services

import (
	"github.com/ArowuTest/retail-loyalty-backend/internal/rules"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
)

// newTestParams wires services to the suite's in-memory stores and clock.
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	engine, err := rules.NewCELEngine()
	s.Require().NoError(err)

	return ServiceParams{
		Stores:            s.GetStores(),
		Logger:            s.GetLogger(),
		Publisher:         s.GetPublisher(),
		Metrics:           s.GetMetrics(),
		Codes:             &testutil.SequenceCodeGenerator{},
		Conditions:        engine,
		Location:          s.GetLocation(),
		CodeRetryAttempts: 5,
		Now:               s.Clock(),
	}
}

func newTestTransactionService(params ServiceParams) *TransactionServiceImpl {
	return NewTransactionService(params, NewRuleEvaluator(params), NewVoucherIssuer(params))
}
