package policy

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

var publicStatuses = []entities.ReviewStatus{entities.ReviewStatusApproved}

// ReviewVisibility returns the filter applied to reviews of products that
// belong to brandID (nil for unclaimed products). Staff and brand owners see
// every status, signed-in users see approved reviews plus their own, and
// anonymous callers see approved reviews only.
func ReviewVisibility(a *Actor, brandID *uuid.UUID) entities.ReviewVisibility {
	if IsAdminOrModerator(a) || IsBrandOwner(a, brandID) {
		return entities.ReviewVisibility{AllStatuses: true}
	}
	if a.IsAuthenticated() {
		author := a.UserID
		return entities.ReviewVisibility{Statuses: publicStatuses, Author: &author}
	}
	return entities.ReviewVisibility{Statuses: publicStatuses}
}

// UserReviewVisibility filters a user's review history: the user and staff
// see everything, others see approved reviews.
func UserReviewVisibility(a *Actor, userID uuid.UUID) entities.ReviewVisibility {
	if IsAuthor(a, userID) || IsAdminOrModerator(a) {
		return entities.ReviewVisibility{AllStatuses: true}
	}
	return entities.ReviewVisibility{Statuses: publicStatuses}
}

// CanViewReview applies ReviewVisibility to a single review
func CanViewReview(a *Actor, review *entities.Review, productBrandID *uuid.UUID) Decision {
	if ReviewVisibility(a, productBrandID).Allows(review) {
		return Allow()
	}
	return Deny(a, "review is not visible")
}

// CanModerateReview gates status transitions
func CanModerateReview(a *Actor, productBrandID *uuid.UUID) Decision {
	return allowIf(a, "only moderators or brand owners can moderate reviews",
		IsAdminOrModerator(a),
		IsBrandOwner(a, productBrandID),
	)
}

// CanDeleteReview extends moderation rights to the review's author
func CanDeleteReview(a *Actor, review *entities.Review, productBrandID *uuid.UUID) Decision {
	if IsAuthor(a, review.UserID) {
		return Allow()
	}
	return CanModerateReview(a, productBrandID)
}
