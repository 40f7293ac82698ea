package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:varchar(200);not null;index"`
	Description *string    `gorm:"type:text"`
	Type        string     `gorm:"type:varchar(20);not null"`
	Verified    bool       `gorm:"not null"`
	BrandID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
