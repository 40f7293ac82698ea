package entities

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the moderation state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
	ReviewStatusFlagged  ReviewStatus = "FLAGGED"
)

// IsValid reports whether s is a known review status
func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected, ReviewStatusFlagged:
		return true
	}
	return false
}

const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a user's rating of a product
type Review struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"productId"`
	UserID    uuid.UUID    `json:"userId"`
	Rating    int          `json:"rating"`
	Title     string       `json:"title"`
	Comment   string       `json:"comment"`
	Status    ReviewStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	DeletedAt *time.Time   `json:"-"`
}

// PostReviewInput represents input for posting or overwriting a review
type PostReviewInput struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Title     string    `json:"title" binding:"required,min=1,max=200"`
	Comment   *string   `json:"comment" binding:"omitempty,max=5000"`
}

// ChangeReviewStatusInput represents a moderation transition
type ChangeReviewStatusInput struct {
	Status ReviewStatus `json:"status" binding:"required,oneof=APPROVED REJECTED FLAGGED PENDING"`
}

// ReviewScope selects the collection a listing or aggregate runs over.
// Exactly one of the ids is set.
type ReviewScope struct {
	ProductID *uuid.UUID
	BrandID   *uuid.UUID
	UserID    *uuid.UUID
}

// ProductReviews scopes to a single product
func ProductReviews(id uuid.UUID) ReviewScope { return ReviewScope{ProductID: &id} }

// BrandReviews scopes to every live product of a brand
func BrandReviews(id uuid.UUID) ReviewScope { return ReviewScope{BrandID: &id} }

// UserReviews scopes to reviews authored by a user
func UserReviews(id uuid.UUID) ReviewScope { return ReviewScope{UserID: &id} }

// OrderColumn is the timestamp a scope is ordered by, newest first.
func (s ReviewScope) OrderColumn() string {
	if s.ProductID != nil {
		return "updated_at"
	}
	return "created_at"
}

// ReviewVisibility is the filter a viewer's review listing and the matching
// aggregate both run through.
type ReviewVisibility struct {
	AllStatuses bool
	Statuses    []ReviewStatus
	Author      *uuid.UUID
}

// Allows reports whether r passes the filter
func (v ReviewVisibility) Allows(r *Review) bool {
	if v.AllStatuses {
		return true
	}
	if v.Author != nil && r.UserID == *v.Author {
		return true
	}
	for _, s := range v.Statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}

// RatingSummary is the aggregate over a visible review set.
// AverageRating is nil when Count is zero.
type RatingSummary struct {
	AverageRating *float64 `json:"averageRating"`
	Count         int64    `json:"count"`
}

// Summarize computes the summary over an in-memory review set
func Summarize(reviews []*Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return RatingSummary{AverageRating: &avg, Count: int64(len(reviews))}
}

// ReviewPage is a page of reviews along with the aggregate over the whole
// visible collection.
type ReviewPage struct {
	Page[*Review]
	Summary RatingSummary `json:"summary"`
}
