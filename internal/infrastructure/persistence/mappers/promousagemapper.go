package mappers

import (
	"sceneforge/internal/domain/promo"
	"sceneforge/internal/infrastructure/persistence/models"
)

func PromoUsageToModel(u *promo.Usage) *models.PromoUsageModel {
	return &models.PromoUsageModel{
		ID:        u.ID(),
		Code:      u.Code(),
		UserEmail: u.UserEmail(),
		UsedAt:    u.UsedAt(),
	}
}

func PromoUsageToDomain(model *models.PromoUsageModel) *promo.Usage {
	return promo.ReconstructUsage(model.ID, model.Code, model.UserEmail, model.UsedAt)
}
