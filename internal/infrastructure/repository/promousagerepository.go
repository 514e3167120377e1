package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sceneforge/internal/domain/promo"
	"sceneforge/internal/infrastructure/persistence/mappers"
	"sceneforge/internal/shared/db"
	apperrors "sceneforge/internal/shared/errors"
)

type PromoUsageRepository struct {
	db *gorm.DB
}

func NewPromoUsageRepository(db *gorm.DB) *PromoUsageRepository {
	return &PromoUsageRepository{db: db}
}

func (r *PromoUsageRepository) Create(ctx context.Context, u *promo.Usage) error {
	model := mappers.PromoUsageToModel(u)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("promo code already redeemed")
		}
		return fmt.Errorf("failed to record promo redemption: %w", err)
	}

	u.SetID(model.ID)
	return nil
}
