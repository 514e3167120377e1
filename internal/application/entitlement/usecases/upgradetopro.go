package usecases

import (
	"context"
	"fmt"

	"sceneforge/internal/domain/entitlement"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
)

// UpgradeToProUseCase promotes a user's entitlement to the pro tier.
// Re-applying the upgrade to an already-pro record is a no-op, so the
// operation is safe to retry from payment callbacks and repair sweeps.
type UpgradeToProUseCase struct {
	repo       entitlement.Repository
	cache      SnapshotCache
	freeLimits entitlement.Limits
	logger     logger.Interface
}

func NewUpgradeToProUseCase(
	repo entitlement.Repository,
	cache SnapshotCache,
	freeLimits entitlement.Limits,
	logger logger.Interface,
) *UpgradeToProUseCase {
	return &UpgradeToProUseCase{
		repo:       repo,
		cache:      cache,
		freeLimits: freeLimits,
		logger:     logger,
	}
}

func (uc *UpgradeToProUseCase) Execute(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	record, err := uc.repo.GetOrCreate(ctx, userID, uc.freeLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}

	if !record.UpgradeToPro() {
		uc.logger.Debugw("entitlement already pro, upgrade skipped", "user_id", userID)
		return record, nil
	}

	if err := uc.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist upgrade: %w", err)
	}

	uc.cache.Invalidate(ctx, userID)

	uc.logger.Infow("entitlement upgraded to pro", "user_id", userID)
	return record, nil
}
