package usecases

import (
	"context"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/shared/logger"
	"sceneforge/internal/shared/metrics"
)

// QuotaChecksUseCase is the mandatory gate upload, shot-generation and
// storyboard modules call before doing their own work. Checks are pure over
// the loaded record; denials are expected business outcomes.
type QuotaChecksUseCase struct {
	getEntitlementUC *GetEntitlementUseCase
	logger           logger.Interface
}

func NewQuotaChecksUseCase(
	getEntitlementUC *GetEntitlementUseCase,
	logger logger.Interface,
) *QuotaChecksUseCase {
	return &QuotaChecksUseCase{
		getEntitlementUC: getEntitlementUC,
		logger:           logger,
	}
}

func (uc *QuotaChecksUseCase) CheckPageLimit(ctx context.Context, userID string, requestedPages int) (entitlement.Decision, error) {
	record, err := uc.getEntitlementUC.Execute(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, err
	}

	decision, err := record.CheckPageLimit(requestedPages)
	if err != nil {
		return entitlement.Decision{}, err
	}

	if !decision.Allowed {
		metrics.QuotaDenialsTotal.WithLabelValues("pages").Inc()
		uc.logger.Debugw("page limit denied",
			"user_id", userID,
			"requested", requestedPages,
			"reason", decision.Reason)
	}

	return decision, nil
}

func (uc *QuotaChecksUseCase) CheckShotsLimit(ctx context.Context, userID string, requestedShots int) (entitlement.Decision, error) {
	record, err := uc.getEntitlementUC.Execute(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, err
	}

	decision, err := record.CheckShotsLimit(requestedShots)
	if err != nil {
		return entitlement.Decision{}, err
	}

	if !decision.Allowed {
		metrics.QuotaDenialsTotal.WithLabelValues("shots").Inc()
	}

	return decision, nil
}

func (uc *QuotaChecksUseCase) CheckStoryboardAccess(ctx context.Context, userID string) (entitlement.Decision, error) {
	record, err := uc.getEntitlementUC.Execute(ctx, userID)
	if err != nil {
		return entitlement.Decision{}, err
	}

	decision := record.CheckStoryboardAccess()
	if !decision.Allowed {
		metrics.QuotaDenialsTotal.WithLabelValues("storyboards").Inc()
	}

	return decision, nil
}
