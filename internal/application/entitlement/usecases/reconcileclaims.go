package usecases

import (
	"context"
	"fmt"

	"sceneforge/internal/domain/entitlement"
	apperrors "sceneforge/internal/shared/errors"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/metrics"
)

// ReconcileResult carries the authoritative entitlement view after a claims
// check. ReissuedToken is non-empty only when the presented claims diverged
// from the stored record.
type ReconcileResult struct {
	Snapshot      entitlement.Snapshot
	Diverged      bool
	ReissuedToken string
}

// ReconcileClaimsUseCase compares token claims against the stored entitlement
// record. The record always wins: stale or tampered claims never widen what a
// request may do, they only trigger a token reissue.
type ReconcileClaimsUseCase struct {
	repo       entitlement.Repository
	cache      SnapshotCache
	issuer     TokenIssuer
	freeLimits entitlement.Limits
	logger     logger.Interface
}

func NewReconcileClaimsUseCase(
	repo entitlement.Repository,
	cache SnapshotCache,
	issuer TokenIssuer,
	freeLimits entitlement.Limits,
	logger logger.Interface,
) *ReconcileClaimsUseCase {
	return &ReconcileClaimsUseCase{
		repo:       repo,
		cache:      cache,
		issuer:     issuer,
		freeLimits: freeLimits,
		logger:     logger,
	}
}

func (uc *ReconcileClaimsUseCase) Execute(ctx context.Context, claims entitlement.Snapshot) (*ReconcileResult, error) {
	if claims.UserID == "" {
		return nil, apperrors.NewValidationError("user ID is required")
	}

	authoritative, err := uc.snapshot(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if claims.Equal(*authoritative) {
		return &ReconcileResult{Snapshot: *authoritative}, nil
	}

	token, err := uc.issuer.Issue(*authoritative)
	if err != nil {
		return nil, fmt.Errorf("failed to reissue entitlement token: %w", err)
	}

	metrics.TokenReissuesTotal.Inc()
	uc.logger.Infow("entitlement claims diverged from record, token reissued",
		"user_id", claims.UserID,
		"claims_tier", claims.Tier,
		"record_tier", authoritative.Tier,
		"claims_version", claims.Version,
		"record_version", authoritative.Version,
	)

	return &ReconcileResult{
		Snapshot:      *authoritative,
		Diverged:      true,
		ReissuedToken: token,
	}, nil
}

func (uc *ReconcileClaimsUseCase) snapshot(ctx context.Context, userID string) (*entitlement.Snapshot, error) {
	if cached, ok := uc.cache.Get(ctx, userID); ok {
		return cached, nil
	}

	record, err := uc.repo.GetOrCreate(ctx, userID, uc.freeLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to load entitlement: %w", err)
	}

	snap := record.Snapshot()
	uc.cache.Set(ctx, snap)
	return &snap, nil
}
