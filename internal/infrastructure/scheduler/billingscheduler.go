package scheduler

import (
	"context"
	"sync"
	"time"

	billingUsecases "sceneforge/internal/application/billing/usecases"
	"sceneforge/internal/shared/logger"
)

const defaultSweepInterval = 15 * time.Minute

// BillingScheduler runs the periodic ledger housekeeping sweeps:
// - expires pending transactions older than the configured window
// - completes upgrades for settled transactions whose user is still not pro
type BillingScheduler struct {
	expirePendingUC *billingUsecases.ExpirePendingTransactionsUseCase
	stuckUpgradesUC *billingUsecases.CompleteStuckUpgradesUseCase
	logger          logger.Interface
	stopChan        chan struct{}
	stopOnce        sync.Once      // Ensures Stop() is only called once
	wg              sync.WaitGroup // Tracks running goroutines for graceful shutdown
	interval        time.Duration
}

func NewBillingScheduler(
	expirePendingUC *billingUsecases.ExpirePendingTransactionsUseCase,
	stuckUpgradesUC *billingUsecases.CompleteStuckUpgradesUseCase,
	interval time.Duration,
	logger logger.Interface,
) *BillingScheduler {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &BillingScheduler{
		expirePendingUC: expirePendingUC,
		stuckUpgradesUC: stuckUpgradesUC,
		logger:          logger,
		stopChan:        make(chan struct{}),
		interval:        interval,
	}
}

// Start starts the scheduler loop in the background.
func (s *BillingScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting billing scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSweepLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully and waits for all goroutines to complete.
// Safe to call multiple times - only the first call will actually stop the scheduler.
func (s *BillingScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping billing scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("billing scheduler stopped")
	})
}

func (s *BillingScheduler) runSweepLoop(ctx context.Context) {
	// Run immediately on startup to clear anything that accumulated while down
	s.runSweeps(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("billing scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runSweeps(ctx)
		}
	}
}

func (s *BillingScheduler) runSweeps(ctx context.Context) {
	s.logger.Debugw("billing sweep started")

	startTime := time.Now()

	// Step 1: Fail pending transactions that outlived the expiry window
	expiredCount, err := s.expirePendingUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to expire pending transactions",
			"error", err,
			"duration", time.Since(startTime),
		)
	} else if expiredCount > 0 {
		s.logger.Infow("pending transactions expired",
			"count", expiredCount,
			"duration", time.Since(startTime),
		)
	}

	// Step 2: Repair settled transactions whose entitlement upgrade never landed
	repairedCount, err := s.stuckUpgradesUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("failed to complete stuck upgrades",
			"error", err,
		)
	} else if repairedCount > 0 {
		s.logger.Infow("stuck upgrades completed",
			"count", repairedCount,
		)
	}
}
