package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"sceneforge/internal/domain/billing"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/infrastructure/persistence/mappers"
	"sceneforge/internal/infrastructure/persistence/models"
	"sceneforge/internal/shared/biztime"
	"sceneforge/internal/shared/constants"
	"sceneforge/internal/shared/db"
	apperrors "sceneforge/internal/shared/errors"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// CreateIdempotent inserts the transaction. The unique index on
// transaction_id turns a duplicate insert into a read of the existing row, so
// recording the same attempt twice is a no-op.
func (r *TransactionRepository) CreateIdempotent(ctx context.Context, t *billing.Transaction) (*billing.Transaction, bool, error) {
	model, err := mappers.TransactionToModel(t)
	if err != nil {
		return nil, false, err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			existing, getErr := r.GetByTransactionID(ctx, t.TransactionID())
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("failed to create transaction: %w", err)
	}

	t.SetID(model.ID)
	return t, false, nil
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*billing.Transaction, error) {
	var model models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("transaction_id = ?", transactionID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("transaction not found")
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return mappers.TransactionToDomain(&model)
}

// Update persists status transitions guarded by the aggregate version, which
// keeps two racing callbacks from both settling the same transaction.
func (r *TransactionRepository) Update(ctx context.Context, t *billing.Transaction) error {
	model, err := mappers.TransactionToModel(t)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("id = ? AND version < ?", model.ID, model.Version).
		Updates(map[string]interface{}{
			"status":                 model.Status,
			"gateway_transaction_id": model.GatewayTransactionID,
			"error_message":          model.ErrorMessage,
			"metadata":               model.Metadata,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("transaction was modified concurrently")
	}
	return nil
}

// ExpirePending fails pending transactions created before cutoff in one
// statement.
func (r *TransactionRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Where("status = ? AND created_at < ?", vo.TransactionStatusPending.String(), cutoff).
		Updates(map[string]interface{}{
			"status":        vo.TransactionStatusFailed.String(),
			"error_message": "expired",
			"version":       gorm.Expr("version + 1"),
			"updated_at":    biztime.NowUTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire pending transactions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TransactionRepository) ListSuccessByUser(ctx context.Context, userID string, limit int) ([]*billing.Transaction, error) {
	var rows []models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, vo.TransactionStatusSuccess.String()).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return toDomainList(rows)
}

// ListStuckUpgrades returns success transactions whose user's entitlement is
// missing or not pro. These are settlement leaks the repair sweep closes.
func (r *TransactionRepository) ListStuckUpgrades(ctx context.Context, limit int) ([]*billing.Transaction, error) {
	var rows []models.TransactionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Table(constants.TableTransactions+" AS t").
		Select("t.*").
		Joins("LEFT JOIN "+constants.TableEntitlements+" AS e ON e.user_id = t.user_id").
		Where("t.status = ? AND (e.tier IS NULL OR e.tier != ?)",
			vo.TransactionStatusSuccess.String(), "pro").
		Order("t.created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list stuck upgrades: %w", err)
	}

	return toDomainList(rows)
}

// StatsByUser aggregates settled attempts in one query.
func (r *TransactionRepository) StatsByUser(ctx context.Context, userID string) (*billing.UserStats, error) {
	var row struct {
		TotalPaid     int64
		Currency      *string
		SuccessCount  int64
		FailedCount   int64
		LastSuccessAt *time.Time
	}

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.TransactionModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) AS total_paid, "+
				"MAX(CASE WHEN status = ? THEN currency END) AS currency, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS success_count, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS failed_count, "+
				"MAX(CASE WHEN status = ? THEN updated_at END) AS last_success_at",
			vo.TransactionStatusSuccess.String(),
			vo.TransactionStatusSuccess.String(),
			vo.TransactionStatusSuccess.String(),
			vo.TransactionStatusFailed.String(),
			vo.TransactionStatusSuccess.String(),
		).
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment stats: %w", err)
	}

	currency := "INR"
	if row.Currency != nil {
		currency = *row.Currency
	}

	return &billing.UserStats{
		TotalPaidMinorUnits: row.TotalPaid,
		Currency:            currency,
		SuccessfulPayments:  row.SuccessCount,
		FailedPayments:      row.FailedCount,
		LastSuccessAt:       row.LastSuccessAt,
	}, nil
}

// DeleteFailedOlderThan enforces the retention policy on failed records.
func (r *TransactionRepository) DeleteFailedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND updated_at < ?", vo.TransactionStatusFailed.String(), cutoff).
		Delete(&models.TransactionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old failed transactions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func toDomainList(rows []models.TransactionModel) ([]*billing.Transaction, error) {
	out := make([]*billing.Transaction, 0, len(rows))
	for i := range rows {
		t, err := mappers.TransactionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
