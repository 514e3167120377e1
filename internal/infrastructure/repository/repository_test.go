package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sceneforge/internal/infrastructure/persistence/models"
)

// newTestDB opens a throwaway sqlite database with the real schema so the
// conditional updates and uniqueness guards run against actual SQL.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(
		sqlite.Open(filepath.Join(t.TempDir(), "repository_test.db")),
		&gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)},
	)
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// One connection serializes concurrent test goroutines the way a busy
	// production pool would queue them, without sqlite lock errors.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(
		&models.EntitlementModel{},
		&models.TransactionModel{},
		&models.PromoUsageModel{},
	))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return database
}
