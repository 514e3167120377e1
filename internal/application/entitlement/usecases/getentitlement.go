package usecases

import (
	"context"
	"fmt"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/shared/logger"
)

// GetEntitlementUseCase returns a user's entitlement record, lazily minting
// the default free record on first access.
type GetEntitlementUseCase struct {
	repo       entitlement.Repository
	freeLimits entitlement.Limits
	logger     logger.Interface
}

func NewGetEntitlementUseCase(
	repo entitlement.Repository,
	freeLimits entitlement.Limits,
	logger logger.Interface,
) *GetEntitlementUseCase {
	return &GetEntitlementUseCase{
		repo:       repo,
		freeLimits: freeLimits,
		logger:     logger,
	}
}

func (uc *GetEntitlementUseCase) Execute(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	record, err := uc.repo.GetOrCreate(ctx, userID, uc.freeLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}

	return record, nil
}
