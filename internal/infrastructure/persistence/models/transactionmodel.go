package models

import (
	"time"

	"gorm.io/datatypes"

	"sceneforge/internal/shared/constants"
)

// TransactionModel is the persistence model for the payment ledger.
type TransactionModel struct {
	ID                   uint    `gorm:"primarykey"`
	TransactionID        string  `gorm:"uniqueIndex;size:64;not null"`
	GatewayTransactionID *string `gorm:"size:128;index"`
	UserID               string  `gorm:"index;size:128;not null"`
	Amount               int64   `gorm:"not null"`
	Currency             string  `gorm:"size:10;not null;default:'INR'"`
	Gateway              string  `gorm:"size:20;not null"`
	Status               string  `gorm:"size:20;not null;index:idx_status_created,priority:1"`
	ErrorMessage         *string `gorm:"type:text"`
	Metadata             datatypes.JSON
	Version              int       `gorm:"not null;default:0"`
	CreatedAt            time.Time `gorm:"index:idx_status_created,priority:2"`
	UpdatedAt            time.Time
}

func (TransactionModel) TableName() string {
	return constants.TableTransactions
}
