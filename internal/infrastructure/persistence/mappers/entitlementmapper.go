// Package mappers translates between domain aggregates and persistence models.
// The models never leak past this package.
package mappers

import (
	"fmt"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/infrastructure/persistence/models"
)

func EntitlementToModel(e *entitlement.Entitlement) *models.EntitlementModel {
	return &models.EntitlementModel{
		ID:                     e.ID(),
		UserID:                 e.UserID(),
		Tier:                   e.Tier().String(),
		TotalPages:             e.TotalPages(),
		UsedPages:              e.UsedPages(),
		MaxShotsPerScene:       e.MaxShotsPerScene(),
		CanGenerateStoryboards: e.CanGenerateStoryboards(),
		Version:                e.Version(),
		CreatedAt:              e.CreatedAt(),
		UpdatedAt:              e.UpdatedAt(),
	}
}

func EntitlementToDomain(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	record, err := entitlement.ReconstructEntitlement(
		model.ID,
		model.UserID,
		entitlement.Tier(model.Tier),
		model.TotalPages,
		model.UsedPages,
		model.MaxShotsPerScene,
		model.CanGenerateStoryboards,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct entitlement %d: %w", model.ID, err)
	}
	return record, nil
}
