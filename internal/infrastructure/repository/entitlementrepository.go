package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sceneforge/internal/domain/entitlement"
	"sceneforge/internal/infrastructure/persistence/mappers"
	"sceneforge/internal/infrastructure/persistence/models"
	"sceneforge/internal/shared/biztime"
	"sceneforge/internal/shared/db"
	apperrors "sceneforge/internal/shared/errors"
)

type EntitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) *EntitlementRepository {
	return &EntitlementRepository{db: db}
}

// GetOrCreate returns the user's record, inserting the default free record on
// first access. A concurrent first access loses the insert race on the unique
// user_id index and reads the surviving row instead.
func (r *EntitlementRepository) GetOrCreate(ctx context.Context, userID string, defaults entitlement.Limits) (*entitlement.Entitlement, error) {
	record, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !apperrors.IsNotFoundError(err) {
		return nil, err
	}

	fresh, err := entitlement.NewFreeEntitlement(userID, defaults)
	if err != nil {
		return nil, err
	}
	model := mappers.EntitlementToModel(fresh)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return r.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("failed to create entitlement: %w", err)
	}

	fresh.SetID(model.ID)
	return fresh, nil
}

func (r *EntitlementRepository) GetByUserID(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("entitlement not found")
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return mappers.EntitlementToDomain(&model)
}

// IncrementPageUsage adds pages with one conditional UPDATE. The guard lives
// in the WHERE clause so two near-limit increments cannot both pass; there is
// no read-modify-write window.
func (r *EntitlementRepository) IncrementPageUsage(ctx context.Context, userID string, pages int) (*entitlement.Entitlement, error) {
	conn := db.GetTxFromContext(ctx, r.db)

	result := conn.Model(&models.EntitlementModel{}).
		Where("user_id = ? AND (total_pages = ? OR used_pages + ? <= total_pages)",
			userID, entitlement.Unlimited, pages).
		Updates(map[string]interface{}{
			"used_pages": gorm.Expr("used_pages + ?", pages),
			"updated_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to increment page usage: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the user has no record or the increment would overshoot.
		record, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewQuotaExceededError(
			fmt.Sprintf("page limit reached: %d/%d pages used", record.UsedPages(), record.TotalPages()))
	}

	return r.GetByUserID(ctx, userID)
}

// Update persists aggregate mutations guarded by the version the aggregate
// held before the mutation.
func (r *EntitlementRepository) Update(ctx context.Context, e *entitlement.Entitlement) error {
	model := mappers.EntitlementToModel(e)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.EntitlementModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"tier":                     model.Tier,
			"total_pages":              model.TotalPages,
			"used_pages":               model.UsedPages,
			"max_shots_per_scene":      model.MaxShotsPerScene,
			"can_generate_storyboards": model.CanGenerateStoryboards,
			"version":                  model.Version,
			"updated_at":               model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("entitlement was modified concurrently")
	}
	return nil
}
