package usecases

import (
	"context"
	"fmt"

	entitlementUsecases "sceneforge/internal/application/entitlement/usecases"
	"sceneforge/internal/domain/billing"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/metrics"
)

const stuckUpgradeBatchSize = 100

// CompleteStuckUpgradesUseCase repairs successful transactions whose user
// never received the pro upgrade. Run at startup and on a schedule; the
// upgrade is idempotent so repairing an already-repaired user is harmless.
type CompleteStuckUpgradesUseCase struct {
	txnRepo   billing.TransactionRepository
	upgradeUC *entitlementUsecases.UpgradeToProUseCase
	logger    logger.Interface
}

func NewCompleteStuckUpgradesUseCase(
	txnRepo billing.TransactionRepository,
	upgradeUC *entitlementUsecases.UpgradeToProUseCase,
	logger logger.Interface,
) *CompleteStuckUpgradesUseCase {
	return &CompleteStuckUpgradesUseCase{
		txnRepo:   txnRepo,
		upgradeUC: upgradeUC,
		logger:    logger,
	}
}

func (uc *CompleteStuckUpgradesUseCase) Execute(ctx context.Context) (int, error) {
	stuck, err := uc.txnRepo.ListStuckUpgrades(ctx, stuckUpgradeBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list stuck upgrades: %w", err)
	}

	if len(stuck) == 0 {
		return 0, nil
	}

	uc.logger.Warnw("found successful transactions without pro entitlement", "count", len(stuck))

	repaired := 0
	for _, txn := range stuck {
		if _, err := uc.upgradeUC.Execute(ctx, txn.UserID()); err != nil {
			uc.logger.Errorw("failed to repair stuck upgrade",
				"transaction_id", txn.TransactionID(),
				"user_id", txn.UserID(),
				"error", err,
			)
			continue
		}

		metrics.StuckUpgradesRepairedTotal.Inc()
		uc.logger.Infow("repaired stuck upgrade",
			"transaction_id", txn.TransactionID(), "user_id", txn.UserID())
		repaired++
	}

	return repaired, nil
}
