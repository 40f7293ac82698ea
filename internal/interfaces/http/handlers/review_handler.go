package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/internal/interfaces/http/response"
)

type ReviewService interface {
	PostReview(ctx context.Context, actor *policy.Actor, input *entities.PostReviewInput) (*entities.Review, error)
	GetReviewByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Review, error)
	DeleteReview(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	ChangeReviewStatus(ctx context.Context, actor *policy.Actor, id uuid.UUID, status entities.ReviewStatus) (*entities.Review, error)
	ListProductReviews(ctx context.Context, actor *policy.Actor, productID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error)
	ListBrandReviews(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error)
	ListUserReviews(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error)
	Aggregate(ctx context.Context, actor *policy.Actor, scope entities.ReviewScope) (entities.RatingSummary, error)
}

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviewUsecase ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewUsecase ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewUsecase: reviewUsecase}
}

// PostReview creates or overwrites the caller's review of a product
// POST /api/v1/reviews
func (h *ReviewHandler) PostReview(c *gin.Context) {
	var input entities.PostReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	review, err := h.reviewUsecase.PostReview(c.Request.Context(), middleware.GetActor(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, review)
}

// GetReview returns a review the caller may see
// GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	review, err := h.reviewUsecase.GetReviewByID(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, review)
}

// DeleteReview soft deletes a review
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.reviewUsecase.DeleteReview(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// ChangeReviewStatus moderates a review
// PATCH /api/v1/reviews/:id/status
func (h *ReviewHandler) ChangeReviewStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.ChangeReviewStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if _, err := h.reviewUsecase.ChangeReviewStatus(c.Request.Context(), middleware.GetActor(c), id, input.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

type reviewLister func(ctx context.Context, actor *policy.Actor, id uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error)

func (h *ReviewHandler) list(c *gin.Context, fn reviewLister) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := fn(c.Request.Context(), middleware.GetActor(c), id, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListProductReviews returns a page of a product's reviews and their rating
// GET /api/v1/products/:id/reviews
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	h.list(c, h.reviewUsecase.ListProductReviews)
}

// ListBrandReviews returns a page of a brand's reviews and their rating
// GET /api/v1/brands/:id/reviews
func (h *ReviewHandler) ListBrandReviews(c *gin.Context) {
	h.list(c, h.reviewUsecase.ListBrandReviews)
}

// ListUserReviews returns a page of a user's review history
// GET /api/v1/users/:id/reviews
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	h.list(c, h.reviewUsecase.ListUserReviews)
}

func (h *ReviewHandler) rating(c *gin.Context, scope func(uuid.UUID) entities.ReviewScope) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.reviewUsecase.Aggregate(c.Request.Context(), middleware.GetActor(c), scope(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// ProductRating returns the rating summary the caller sees for a product
// GET /api/v1/products/:id/rating
func (h *ReviewHandler) ProductRating(c *gin.Context) {
	h.rating(c, entities.ProductReviews)
}

// BrandRating returns the rating summary the caller sees for a brand
// GET /api/v1/brands/:id/rating
func (h *ReviewHandler) BrandRating(c *gin.Context) {
	h.rating(c, entities.BrandReviews)
}
