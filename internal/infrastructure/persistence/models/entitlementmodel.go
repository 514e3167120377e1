package models

import (
	"time"

	"sceneforge/internal/shared/constants"
)

// EntitlementModel is the persistence model for per-user entitlement records.
// UsedPages is mutated only by conditional UPDATE, never through this struct.
type EntitlementModel struct {
	ID                     uint   `gorm:"primarykey"`
	UserID                 string `gorm:"uniqueIndex;size:128;not null"`
	Tier                   string `gorm:"size:20;not null;default:free"`
	TotalPages             int    `gorm:"not null"`
	UsedPages              int    `gorm:"not null;default:0"`
	MaxShotsPerScene       int    `gorm:"not null"`
	CanGenerateStoryboards bool   `gorm:"not null;default:false"`
	Version                int    `gorm:"not null;default:1"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (EntitlementModel) TableName() string {
	return constants.TableEntitlements
}
