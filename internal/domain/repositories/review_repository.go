package repositories

import (
	"context"

	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// ReviewRepository defines review data operations. List and Aggregate share
// the same scope and visibility filter.
type ReviewRepository interface {
	Create(ctx context.Context, review *entities.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error)
	GetActiveByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entities.Review, error)
	Update(ctx context.Context, review *entities.Review) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ReviewStatus) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// List returns up to page.Limit+1 reviews, newest first
	List(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility, page entities.PageRequest) ([]*entities.Review, error)
	Aggregate(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility) (entities.RatingSummary, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	ListActiveByProducts(ctx context.Context, productIDs ...uuid.UUID) ([]*entities.Review, error)
	Reassign(ctx context.Context, ids []uuid.UUID, productID uuid.UUID) error
	HardDelete(ctx context.Context, ids []uuid.UUID) error
	// HardDeleteByProduct removes every remaining row of the product, soft-deleted ones included
	HardDeleteByProduct(ctx context.Context, productID uuid.UUID) error
}
