package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Verified  bool      `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BrandOwner links a user to a brand they administer
type BrandOwner struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	BrandID   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time
}

func (BrandOwner) TableName() string {
	return "brand_owners"
}

// BrandWithCount is scanned from brand listings
type BrandWithCount struct {
	Brand
	ProductCount int64
}
