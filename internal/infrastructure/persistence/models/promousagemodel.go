package models

import (
	"time"

	"sceneforge/internal/shared/constants"
)

// PromoUsageModel records one promo-code redemption per (code, email).
type PromoUsageModel struct {
	ID        uint   `gorm:"primarykey"`
	Code      string `gorm:"size:64;not null;uniqueIndex:idx_code_email,priority:1"`
	UserEmail string `gorm:"size:255;not null;uniqueIndex:idx_code_email,priority:2;index"`
	UsedAt    time.Time
}

func (PromoUsageModel) TableName() string {
	return constants.TablePromoCodeUsage
}
