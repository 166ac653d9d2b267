// Command import records historical purchases from a CSV export of the till.
// Every row goes through the normal transaction flow, so rows that qualify
// under the rule active at their purchase time earn vouchers. Receipts that
// were already recorded are skipped, which makes re-running a file safe.
//
//	import -file purchases.csv
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArowuTest/retail-loyalty-backend/internal/bootstrap"
	"github.com/ArowuTest/retail-loyalty-backend/internal/config"
	"github.com/ArowuTest/retail-loyalty-backend/internal/logger"
	"github.com/ArowuTest/retail-loyalty-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	filePath := flag.String("file", "", "CSV file with member_id,receipt_code,amount,purchased_at[,brand,collection_name,collection_year,items]")
	adminID := flag.String("admin", "csv-import", "admin id recorded on imported transactions")
	flag.Parse()
	if *filePath == "" {
		log.Fatal("CSV file path is required: -file purchases.csv")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, closeStore, err := bootstrap.OpenStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("failed to open store", "error", err)
	}
	defer closeStore()

	pub := bootstrap.NewPublisher(cfg.Kafka, appLogger)
	defer func() { _ = pub.Close() }()

	svc, err := bootstrap.NewServices(cfg, stores, appLogger, pub, metrics.New(prometheus.NewRegistry()))
	if err != nil {
		appLogger.Fatalw("failed to build services", "error", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		appLogger.Fatalw("failed to open CSV file", "file", *filePath, "error", err)
	}
	defer file.Close()

	loc, _ := cfg.Loyalty.Location()
	imp := &purchaseImporter{
		transactions: svc.Transaction,
		logger:       appLogger,
		location:     loc,
		adminID:      *adminID,
	}
	summary, err := imp.Import(ctx, file)
	if err != nil {
		appLogger.Fatalw("import failed", "error", err, "summary", summary)
	}
	appLogger.Infow("import finished",
		"rows", summary.TotalRows,
		"recorded", summary.Recorded,
		"vouchers_issued", summary.VouchersIssued,
		"already_recorded", summary.AlreadyRecorded,
		"failed", len(summary.Errors))
}
