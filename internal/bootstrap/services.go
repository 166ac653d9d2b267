package bootstrap

import (
	"github.com/ArowuTest/retail-loyalty-backend/internal/config"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/ArowuTest/retail-loyalty-backend/internal/publisher"
	"github.com/ArowuTest/retail-loyalty-backend/internal/repositories"
	"github.com/ArowuTest/retail-loyalty-backend/internal/rules"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/ArowuTest/retail-loyalty-backend/internal/utils"
)

// Services is every application service the binaries wire up
type Services struct {
	Member      *services.MemberServiceImpl
	Transaction *services.TransactionServiceImpl
	Voucher     *services.VoucherServiceImpl
	Rule        *services.RuleServiceImpl
	Event       *services.EventServiceImpl
	Draw        *services.DrawServiceImpl
	Prize       *services.PrizeServiceImpl
	Winner      *services.WinnerServiceImpl
}

// NewServices builds the services over stores using the loyalty settings
func NewServices(cfg *config.Config, stores repositories.Stores, log *logger.Logger, pub publisher.Publisher, m *metrics.Metrics) (*Services, error) {
	loc, err := cfg.Loyalty.Location()
	if err != nil {
		return nil, err
	}
	maxAmount, err := cfg.Loyalty.MaxAmount()
	if err != nil {
		return nil, err
	}
	engine, err := rules.NewCELEngine()
	if err != nil {
		return nil, err
	}

	params := services.ServiceParams{
		Stores:            stores,
		Logger:            log,
		Publisher:         pub,
		Metrics:           m,
		Codes:             utils.NewCodeGenerator(),
		Conditions:        engine,
		Location:          loc,
		CodeRetryAttempts: cfg.Loyalty.CodeRetryAttempts,

		MaxTransactionAmount:      maxAmount,
		MaxVouchersPerTransaction: cfg.Loyalty.MaxVouchersPerTransaction,
	}

	voucher := services.NewVoucherService(params)
	if cfg.Loyalty.ExpirySweepBatch > 0 {
		voucher.SweepBatch = cfg.Loyalty.ExpirySweepBatch
	}

	return &Services{
		Member:      services.NewMemberService(params),
		Transaction: services.NewTransactionService(params, services.NewRuleEvaluator(params), services.NewVoucherIssuer(params)),
		Voucher:     voucher,
		Rule:        services.NewRuleService(params),
		Event:       services.NewEventService(params),
		Draw:        services.NewDrawService(params),
		Prize:       services.NewPrizeService(params),
		Winner:      services.NewWinnerService(params),
	}, nil
}

// NewPublisher returns the kafka publisher when enabled, a no-op otherwise
func NewPublisher(cfg config.KafkaConfig, log *logger.Logger) publisher.Publisher {
	if !cfg.Enabled {
		return publisher.NoopPublisher{}
	}
	log.Infow("publishing events to kafka", "topic", cfg.Topic)
	return publisher.NewKafkaPublisher(cfg.Brokers, cfg.Topic, log)
}
