package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"SellerLedger/internal/config"
	"SellerLedger/internal/logger"
	"SellerLedger/internal/serviceiface"
)

// BatchService runs the reconciliation batch on the configured cron
// schedule. With run_once set, the entrypoint calls the Runner directly and
// this service is not started.
type BatchService struct {
	cfg  config.Config
	cron *cron.Cron
}

func NewBatchService(cfg config.Config) serviceiface.Service {
	return &BatchService{cfg: cfg}
}

func (s *BatchService) Name() string {
	return "batch"
}

func (s *BatchService) Start() error {
	loc, err := time.LoadLocation(s.cfg.Scheduler.TimeZone)
	if err != nil {
		return fmt.Errorf("load time zone %q: %w", s.cfg.Scheduler.TimeZone, err)
	}
	s.cron = cron.New(cron.WithLocation(loc))

	runner := NewRunner(s.cfg)
	_, err = s.cron.AddFunc(s.cfg.Scheduler.Schedule, func() {
		if _, err := runner.Run(); err != nil {
			log.Printf("[ERROR] scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule batch run: %w", err)
	}

	s.cron.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("batch service scheduled: %s (%s)", s.cfg.Scheduler.Schedule, s.cfg.Scheduler.TimeZone))
	}
	log.Printf("Batch service started, schedule %q in %s", s.cfg.Scheduler.Schedule, s.cfg.Scheduler.TimeZone)
	return nil
}

func (s *BatchService) Stop() error {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done() // let an in-flight run finish; never interrupt a batch
	}
	log.Println("Batch service stopped.")
	return nil
}
