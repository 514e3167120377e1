package migration

import (
	"sceneforge/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.EntitlementModel{},
		&models.TransactionModel{},
		&models.PromoUsageModel{},
	}
}
