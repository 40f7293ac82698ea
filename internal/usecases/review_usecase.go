package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/domain/repositories"
	"re-view.backend/pkg/bus"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/metrics"
	"re-view.backend/pkg/utils"
)

// ReviewUsecase handles posting, moderating and listing reviews
type ReviewUsecase struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
	brandRepo   repositories.BrandRepository
	userRepo    repositories.UserRepository
	uow         repositories.UnitOfWork
	locker      Locker
	events      EventPublisher
	metrics     *metrics.Registry
}

// NewReviewUsecase creates a new review usecase. A nil locker serializes
// nothing beyond what the store's uniqueness guarantees.
func NewReviewUsecase(
	reviewRepo repositories.ReviewRepository,
	productRepo repositories.ProductRepository,
	brandRepo repositories.BrandRepository,
	userRepo repositories.UserRepository,
	uow repositories.UnitOfWork,
	locker Locker,
	events EventPublisher,
	m *metrics.Registry,
) *ReviewUsecase {
	if locker == nil {
		locker = localLocker{}
	}
	return &ReviewUsecase{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		brandRepo:   brandRepo,
		userRepo:    userRepo,
		uow:         uow,
		locker:      locker,
		events:      events,
		metrics:     m,
	}
}

func reviewLockKey(productID, userID uuid.UUID) string {
	return fmt.Sprintf("review:%s:%s", productID, userID)
}

// PostReview creates the actor's review of a product, or overwrites the
// live one. Either way the review ends up APPROVED.
func (u *ReviewUsecase) PostReview(ctx context.Context, actor *policy.Actor, input *entities.PostReviewInput) (*entities.Review, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	if input.Rating < entities.MinRating || input.Rating > entities.MaxRating {
		return nil, invalidField("rating", "must be between 1 and 5")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidField("title", "is required")
	}
	comment := ""
	if input.Comment != nil {
		comment = *input.Comment
	}

	var review *entities.Review
	err := u.locker.WithLock(ctx, reviewLockKey(input.ProductID, actor.UserID), func(lockCtx context.Context) error {
		return u.uow.Do(lockCtx, func(txCtx context.Context) error {
			// the share lock holds off a merge of this product until commit
			if _, err := u.productRepo.GetByIDForShare(txCtx, input.ProductID); err != nil {
				return notFound(err, "Product not found")
			}
			var err error
			review, err = u.upsertReview(txCtx, actor.UserID, input.ProductID, input.Rating, title, comment)
			return err
		})
	})
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		logger.Error(ctx, "Failed to post review",
			zap.String("product_id", input.ProductID.String()),
			zap.String("user_id", actor.UserID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	u.metrics.ReviewPosted()
	publish(ctx, u.events, bus.SubjectReviewPosted, ReviewEvent{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Status:    string(review.Status),
		ActorID:   actor.UserID,
	})
	return review, nil
}

func (u *ReviewUsecase) upsertReview(ctx context.Context, userID, productID uuid.UUID, rating int, title, comment string) (*entities.Review, error) {
	overwrite := func(existing *entities.Review) (*entities.Review, error) {
		existing.Rating = rating
		existing.Title = title
		existing.Comment = comment
		existing.Status = entities.ReviewStatusApproved
		if err := u.reviewRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	existing, err := u.reviewRepo.GetActiveByProductAndUser(ctx, productID, userID)
	if err == nil {
		return overwrite(existing)
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	review := &entities.Review{
		ID:        utils.NewID(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
		Status:    entities.ReviewStatusApproved,
	}
	err = u.reviewRepo.Create(ctx, review)
	if err == nil {
		return review, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return nil, err
	}

	// lost a race the lock did not cover; the store kept the other write
	existing, err = u.reviewRepo.GetActiveByProductAndUser(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	return overwrite(existing)
}

// GetReviewByID returns a review the actor may see
func (u *ReviewUsecase) GetReviewByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Review, error) {
	review, brandID, err := u.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanViewReview(actor, review, brandID).Err(); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview soft deletes a review. Authors, moderators and owners of the
// product's brand may do so.
func (u *ReviewUsecase) DeleteReview(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	review, brandID, err := u.loadReview(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CanDeleteReview(actor, review, brandID).Err(); err != nil {
		return err
	}
	if err := u.reviewRepo.SoftDelete(ctx, id); err != nil {
		logger.Error(ctx, "Failed to delete review", zap.String("review_id", id.String()), zap.Error(err))
		return notFound(err, "Review not found")
	}

	publish(ctx, u.events, bus.SubjectReviewDeleted, ReviewEvent{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		ActorID:   actor.UserID,
	})
	return nil
}

// ChangeReviewStatus moves a review to another moderation status
func (u *ReviewUsecase) ChangeReviewStatus(ctx context.Context, actor *policy.Actor, id uuid.UUID, status entities.ReviewStatus) (*entities.Review, error) {
	if !status.IsValid() {
		return nil, invalidField("status", "must be one of: APPROVED, REJECTED, FLAGGED, PENDING")
	}
	review, brandID, err := u.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModerateReview(actor, brandID).Err(); err != nil {
		return nil, err
	}
	if err := u.reviewRepo.UpdateStatus(ctx, id, status); err != nil {
		logger.Error(ctx, "Failed to change review status",
			zap.String("review_id", id.String()),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, notFound(err, "Review not found")
	}
	review.Status = status

	u.metrics.ReviewStatusChanged(string(status))
	publish(ctx, u.events, bus.SubjectReviewStatusChanged, ReviewEvent{
		ReviewID:  review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Status:    string(status),
		ActorID:   actor.UserID,
	})
	return review, nil
}

// loadReview fetches a live review on a live product along with the
// product's brand
func (u *ReviewUsecase) loadReview(ctx context.Context, id uuid.UUID) (*entities.Review, *uuid.UUID, error) {
	review, err := u.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "Review not found")
	}
	product, err := u.productRepo.GetByID(ctx, review.ProductID)
	if err != nil {
		return nil, nil, notFound(err, "Review not found")
	}
	return review, product.BrandID, nil
}

// ListProductReviews pages through the reviews of a product the actor may
// see, with the aggregate over that same set
func (u *ReviewUsecase) ListProductReviews(ctx context.Context, actor *policy.Actor, productID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	vis := policy.ReviewVisibility(actor, product.BrandID)
	return u.listWithSummary(ctx, entities.ProductReviews(productID), vis, page)
}

// ListBrandReviews pages through the reviews of every live product of a
// brand the actor may view
func (u *ReviewUsecase) ListBrandReviews(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	brand, err := u.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, notFound(err, "Brand not found")
	}
	if err := policy.CanViewBrand(actor, brand).Err(); err != nil {
		return nil, err
	}
	vis := policy.ReviewVisibility(actor, &brand.ID)
	return u.listWithSummary(ctx, entities.BrandReviews(brandID), vis, page)
}

// ListUserReviews pages through a user's review history
func (u *ReviewUsecase) ListUserReviews(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "User not found")
	}
	vis := policy.UserReviewVisibility(actor, userID)
	return u.listWithSummary(ctx, entities.UserReviews(userID), vis, page)
}

// Aggregate returns the rating summary the actor sees for a scope
func (u *ReviewUsecase) Aggregate(ctx context.Context, actor *policy.Actor, scope entities.ReviewScope) (entities.RatingSummary, error) {
	vis, err := u.scopeVisibility(ctx, actor, scope)
	if err != nil {
		return entities.RatingSummary{}, err
	}
	return u.reviewRepo.Aggregate(ctx, scope, vis)
}

func (u *ReviewUsecase) scopeVisibility(ctx context.Context, actor *policy.Actor, scope entities.ReviewScope) (entities.ReviewVisibility, error) {
	switch {
	case scope.ProductID != nil:
		product, err := u.productRepo.GetByID(ctx, *scope.ProductID)
		if err != nil {
			return entities.ReviewVisibility{}, notFound(err, "Product not found")
		}
		return policy.ReviewVisibility(actor, product.BrandID), nil
	case scope.BrandID != nil:
		brand, err := u.brandRepo.GetByID(ctx, *scope.BrandID)
		if err != nil {
			return entities.ReviewVisibility{}, notFound(err, "Brand not found")
		}
		if err := policy.CanViewBrand(actor, brand).Err(); err != nil {
			return entities.ReviewVisibility{}, err
		}
		return policy.ReviewVisibility(actor, &brand.ID), nil
	case scope.UserID != nil:
		return policy.UserReviewVisibility(actor, *scope.UserID), nil
	}
	return entities.ReviewVisibility{}, domainerrors.BadRequest("a review scope is required")
}

// listWithSummary reads the page and the aggregate in one transaction so
// both see the same committed reviews
func (u *ReviewUsecase) listWithSummary(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility, page entities.PageRequest) (*entities.ReviewPage, error) {
	page = normalizePage(page)
	var result entities.ReviewPage
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		rows, err := u.reviewRepo.List(txCtx, scope, vis, page)
		if err != nil {
			return err
		}
		summary, err := u.reviewRepo.Aggregate(txCtx, scope, vis)
		if err != nil {
			return err
		}
		result.Page = *toPage(rows, page.Limit, reviewIDOf)
		result.Summary = summary
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
