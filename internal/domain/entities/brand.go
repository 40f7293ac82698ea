package entities

import (
	"time"

	"github.com/google/uuid"
)

// Brand represents an organisation that can own products and services
type Brand struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Verified     bool        `json:"verified"`
	OwnerIDs     []uuid.UUID `json:"ownerIds,omitempty"`
	ProductCount int64       `json:"productCount"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	DeletedAt    *time.Time  `json:"-"`
}

// IsClaimed reports whether at least one owner is known for the brand
func (b *Brand) IsClaimed() bool {
	return len(b.OwnerIDs) > 0
}

// BrandFilter narrows brand listings
type BrandFilter struct {
	IncludeUnverified bool
	OwnerID           *uuid.UUID
}

// CreateBrandInput represents input for registering a brand
type CreateBrandInput struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
