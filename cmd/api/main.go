package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/api/routes"
	"github.com/ArowuTest/retail-loyalty-backend/internal/bootstrap"
	"github.com/ArowuTest/retail-loyalty-backend/internal/config"
	"github.com/ArowuTest/retail-loyalty-backend/internal/handlers"
	"github.com/ArowuTest/retail-loyalty-backend/internal/lock"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/ArowuTest/retail-loyalty-backend/internal/scheduler"
	"github.com/ArowuTest/retail-loyalty-backend/internal/tracing"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatalw("server exited with error", "error", err)
	}
	appLogger.Infow("server exiting")
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracerProvider(cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warnw("failed to flush traces", "error", err)
		}
	}()

	stores, closeStore, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	locker, closeLocker := newLocker(cfg.Redis, log)
	defer closeLocker()

	pub := bootstrap.NewPublisher(cfg.Kafka, log)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warnw("failed to close publisher", "error", err)
		}
	}()

	loc, err := cfg.Loyalty.Location()
	if err != nil {
		return err
	}
	m := metrics.New(prometheus.DefaultRegisterer)
	svc, err := bootstrap.NewServices(cfg, stores, log, pub, m)
	if err != nil {
		return err
	}

	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.SetupRouter(routes.RouterOptions{
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
		Metrics:        m,
	}, routes.HandlerDependencies{
		MemberHandler:      handlers.NewMemberHandler(svc.Member, svc.Voucher, svc.Transaction),
		TransactionHandler: handlers.NewTransactionHandler(svc.Transaction),
		VoucherHandler:     handlers.NewVoucherHandler(svc.Voucher, time.Now),
		RuleHandler:        handlers.NewRuleHandler(svc.Rule),
		EventHandler:       handlers.NewEventHandler(svc.Event),
		DrawHandler:        handlers.NewDrawHandler(svc.Draw),
		PrizeHandler:       handlers.NewPrizeHandler(svc.Prize),
		WinnerHandler:      handlers.NewWinnerHandler(svc.Winner),
	})

	sched := scheduler.New(loc, log, m)
	if err := sched.Register(ctx, &scheduler.ExpireVouchers{
		Sweeper:  svc.Voucher,
		Locker:   locker,
		Logger:   log.With("job", "voucher.expire"),
		Schedule: cfg.Loyalty.ExpirySweepSchedule,
		Enabled:  cfg.Loyalty.ExpirySweepEnabled,
	}); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server starting", "port", cfg.Server.Port, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newLocker picks the redis lock when redis is configured. A single instance
// deployment can run with the in-process lock.
func newLocker(cfg config.RedisConfig, log *logger.Logger) (lock.Locker, func()) {
	if !cfg.Enabled {
		return lock.NewLocalLocker(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	log.Infow("using redis for job locks", "addr", cfg.Addr)
	return lock.NewRedisLocker(client, "loyalty:lock:"), func() {
		if err := client.Close(); err != nil {
			log.Warnw("error closing redis", "error", err)
		}
	}
}
