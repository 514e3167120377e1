package usecases

import (
	"context"
	"fmt"
	"time"

	"sceneforge/internal/domain/billing"
	"sceneforge/internal/shared/biztime"
	"sceneforge/internal/shared/logger"
)

// Failed records are kept for support lookups, then purged.
const failedRetention = 90 * 24 * time.Hour

// ExpirePendingTransactionsUseCase fails pending transactions older than the
// expiry window and purges failed records past retention. Abandoned checkouts
// otherwise sit pending forever and keep their slot in reconciliation reports.
type ExpirePendingTransactionsUseCase struct {
	txnRepo     billing.TransactionRepository
	expiryAfter time.Duration
	logger      logger.Interface
}

func NewExpirePendingTransactionsUseCase(
	txnRepo billing.TransactionRepository,
	expiryAfter time.Duration,
	logger logger.Interface,
) *ExpirePendingTransactionsUseCase {
	return &ExpirePendingTransactionsUseCase{
		txnRepo:     txnRepo,
		expiryAfter: expiryAfter,
		logger:      logger,
	}
}

func (uc *ExpirePendingTransactionsUseCase) Execute(ctx context.Context) (int64, error) {
	now := biztime.NowUTC()

	swept, err := uc.txnRepo.ExpirePending(ctx, now.Add(-uc.expiryAfter))
	if err != nil {
		uc.logger.Errorw("failed to expire pending transactions", "error", err)
		return 0, fmt.Errorf("failed to expire pending transactions: %w", err)
	}
	if swept > 0 {
		uc.logger.Infow("expired stale pending transactions", "count", swept)
	}

	purged, err := uc.txnRepo.DeleteFailedOlderThan(ctx, now.Add(-failedRetention))
	if err != nil {
		// Retention cleanup must not block the expiry sweep.
		uc.logger.Warnw("failed to purge old failed transactions", "error", err)
	} else if purged > 0 {
		uc.logger.Infow("purged failed transactions past retention", "count", purged)
	}

	return swept, nil
}
