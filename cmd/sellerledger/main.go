package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"SellerLedger/internal/config"
	"SellerLedger/internal/jobs"
	"SellerLedger/internal/logger"
)

func main() {
	// Load .env for local dev
	_ = godotenv.Load(".env")

	cfgPath := os.Getenv("SELLERLEDGER_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logSvc := logger.NewLoggerService(cfg.Logger)
	if err := logSvc.Start(); err != nil {
		log.Fatal("failed to start logger: ", err)
	}
	logger.SetGlobalLogger(logSvc)
	defer logSvc.Stop()

	if cfg.Scheduler.RunOnce {
		sum, err := jobs.NewRunner(cfg).Run()
		if err != nil {
			log.Printf("[ERROR] run failed: %v", err)
			logSvc.Stop()
			os.Exit(1)
		}
		log.Printf("run %s complete: reconciled=%v ledger+%d consolidated+%d rejected+%d inventory=%d",
			sum.RunID, sum.Reconciled, sum.NewLedgerRows, sum.NewLongRows, sum.RejectedRows, sum.InventoryRows)
		return
	}

	batch := jobs.NewBatchService(cfg)
	if err := batch.Start(); err != nil {
		log.Fatal("failed to start batch service: ", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := batch.Stop(); err != nil {
		log.Fatal("failed to stop batch service: ", err)
	}
}
