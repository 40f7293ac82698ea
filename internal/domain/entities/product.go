package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// ProductType distinguishes physical products from services
type ProductType string

const (
	ProductTypeProduct ProductType = "PRODUCT"
	ProductTypeService ProductType = "SERVICE"
)

// IsValid reports whether t is a known product type
func (t ProductType) IsValid() bool {
	return t == ProductTypeProduct || t == ProductTypeService
}

// Product represents a reviewable product or service
type Product struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	Type        ProductType `json:"type"`
	Verified    bool        `json:"verified"`
	BrandID     *uuid.UUID  `json:"brandId"`
	CreatedByID uuid.UUID   `json:"createdById"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	DeletedAt   *time.Time  `json:"-"`
}

// IsClaimed reports whether the product is linked to a brand
func (p *Product) IsClaimed() bool {
	return p.BrandID != nil
}

// ProductFilter narrows product listings
type ProductFilter struct {
	BrandID      *uuid.UUID
	CreatedByID  *uuid.UUID
	VerifiedOnly bool
}

// CreateProductInput represents input for creating a product
type CreateProductInput struct {
	Name        string      `json:"name" binding:"required,min=1,max=200"`
	Description *string     `json:"description" binding:"omitempty,max=2000"`
	Type        ProductType `json:"type" binding:"required,oneof=PRODUCT SERVICE"`
	BrandID     *uuid.UUID  `json:"brandId"`
}

// ProductUpdate is the typed update request for a product. Nil fields are
// left unchanged; ClearBrand unlinks the product from its brand.
type ProductUpdate struct {
	Name        *string      `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description" validate:"omitempty,max=2000"`
	Type        *ProductType `json:"type" validate:"omitempty,oneof=PRODUCT SERVICE"`
	BrandID     *uuid.UUID   `json:"brandId"`
	ClearBrand  bool         `json:"clearBrand" validate:"excluded_with=BrandID"`
	Verified    *bool        `json:"verified"`
}

// IsEmpty reports whether the update changes nothing
func (u ProductUpdate) IsEmpty() bool {
	return !u.TouchesDetails() && u.BrandID == nil && !u.ClearBrand && u.Verified == nil
}

// TouchesDetails reports whether name, description or type change
func (u ProductUpdate) TouchesDetails() bool {
	return u.Name != nil || u.Description != nil || u.Type != nil
}

// ChangesBrand reports whether the update links, relinks or unlinks a brand
func (u ProductUpdate) ChangesBrand(current *uuid.UUID) bool {
	if u.ClearBrand {
		return current != nil
	}
	if u.BrandID == nil {
		return false
	}
	return current == nil || *current != *u.BrandID
}

// TogglesVerified reports whether the verified flag flips
func (u ProductUpdate) TogglesVerified(current bool) bool {
	return u.Verified != nil && *u.Verified != current
}

// ResultingBrand returns the brand the product is linked to after the update
func (u ProductUpdate) ResultingBrand(current *uuid.UUID) *uuid.UUID {
	switch {
	case u.ClearBrand:
		return nil
	case u.BrandID != nil:
		return u.BrandID
	}
	return current
}

// Apply writes the update onto p
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = null.StringFrom(*u.Description)
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	p.BrandID = u.ResultingBrand(p.BrandID)
	if u.Verified != nil {
		p.Verified = *u.Verified
	}
	if p.BrandID == nil {
		p.Verified = false
	}
}

// MergeProductsInput represents input for consolidating two products
type MergeProductsInput struct {
	MergeID uuid.UUID `json:"mergeId" binding:"required"`
}
