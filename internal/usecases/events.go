package usecases

import "github.com/google/uuid"

// ReviewEvent is published when a review is posted, moderated or deleted
type ReviewEvent struct {
	ReviewID  uuid.UUID `json:"reviewId"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating,omitempty"`
	Status    string    `json:"status,omitempty"`
	ActorID   uuid.UUID `json:"actorId"`
}

// BrandEvent is published when a brand is created or verified
type BrandEvent struct {
	BrandID uuid.UUID  `json:"brandId"`
	Name    string     `json:"name"`
	OwnerID *uuid.UUID `json:"ownerId,omitempty"`
	ActorID uuid.UUID  `json:"actorId"`
}

// ProductEvent is published when a product is created or deleted
type ProductEvent struct {
	ProductID uuid.UUID  `json:"productId"`
	BrandID   *uuid.UUID `json:"brandId,omitempty"`
	ActorID   uuid.UUID  `json:"actorId"`
}

// MergeEvent describes a completed product merge
type MergeEvent struct {
	TargetID   uuid.UUID   `json:"targetId"`
	MergedID   uuid.UUID   `json:"mergedId"`
	BrandID    uuid.UUID   `json:"brandId"`
	Reassigned []uuid.UUID `json:"reassigned"`
	Discarded  []uuid.UUID `json:"discarded"`
	ActorID    uuid.UUID   `json:"actorId"`
}
