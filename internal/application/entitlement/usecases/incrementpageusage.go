package usecases

import (
	"context"
	"fmt"

	"sceneforge/internal/domain/entitlement"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
)

// IncrementPageUsageUseCase records consumed pages. The increment is a single
// conditional update at the storage layer so two concurrent requests near the
// boundary cannot jointly overshoot the limit.
type IncrementPageUsageUseCase struct {
	repo       entitlement.Repository
	cache      SnapshotCache
	freeLimits entitlement.Limits
	logger     logger.Interface
}

func NewIncrementPageUsageUseCase(
	repo entitlement.Repository,
	cache SnapshotCache,
	freeLimits entitlement.Limits,
	logger logger.Interface,
) *IncrementPageUsageUseCase {
	return &IncrementPageUsageUseCase{
		repo:       repo,
		cache:      cache,
		freeLimits: freeLimits,
		logger:     logger,
	}
}

func (uc *IncrementPageUsageUseCase) Execute(ctx context.Context, userID string, pages int) (*entitlement.Entitlement, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}
	if pages <= 0 {
		return nil, apperrors.NewValidationError("pages must be positive")
	}

	// The record must exist before the conditional update can match it.
	if _, err := uc.repo.GetOrCreate(ctx, userID, uc.freeLimits); err != nil {
		return nil, fmt.Errorf("failed to ensure entitlement record: %w", err)
	}

	record, err := uc.repo.IncrementPageUsage(ctx, userID, pages)
	if err != nil {
		if apperrors.IsQuotaExceeded(err) {
			uc.logger.Debugw("page usage increment denied", "user_id", userID, "pages", pages)
		}
		return nil, err
	}

	uc.cache.Invalidate(ctx, userID)

	return record, nil
}
