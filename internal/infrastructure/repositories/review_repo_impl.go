package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/infrastructure/models"
)

const liveProducts = "reviews.product_id IN (SELECT p.id FROM products p WHERE p.deleted_at IS NULL"

// ReviewRepository implements review data operations
type ReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review. A live review by the same author on the same
// product yields ErrAlreadyExists without aborting the surrounding transaction.
func (r *ReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	m := &models.Review{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Title:     review.Title,
		Comment:   review.Comment,
		Status:    string(review.Status),
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
	result := GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		return mapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadyExists
	}
	review.CreatedAt, review.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// GetByID gets a live review
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error) {
	var m models.Review
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toReviewEntity(&m), nil
}

// GetActiveByProductAndUser returns the author's live review of the product
func (r *ReviewRepository) GetActiveByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entities.Review, error) {
	var m models.Review
	err := GetDB(ctx, r.db).Where("product_id = ? AND user_id = ?", productID, userID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toReviewEntity(&m), nil
}

// Update overwrites the review content and status
func (r *ReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"rating":     review.Rating,
		"title":      review.Title,
		"comment":    review.Comment,
		"status":     string(review.Status),
		"updated_at": now,
	}
	result := GetDB(ctx, r.db).Model(&models.Review{}).Where("id = ?", review.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	review.UpdatedAt = now
	return nil
}

// UpdateStatus changes only the moderation status
func (r *ReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ReviewStatus) error {
	result := GetDB(ctx, r.db).Model(&models.Review{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a review
func (r *ReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// visible is the single scope + visibility predicate behind both List and
// Aggregate
func (r *ReviewRepository) visible(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility) *gorm.DB {
	q := GetDB(ctx, r.db).Model(&models.Review{})
	switch {
	case scope.ProductID != nil:
		q = q.Where("reviews.product_id = ?", *scope.ProductID)
	case scope.BrandID != nil:
		q = q.Where(liveProducts+" AND p.brand_id = ?)", *scope.BrandID)
	case scope.UserID != nil:
		q = q.Where("reviews.user_id = ?", *scope.UserID).Where(liveProducts + ")")
	default:
		return q.Where("1 = 0")
	}
	return applyReviewVisibility(q, vis)
}

func applyReviewVisibility(q *gorm.DB, vis entities.ReviewVisibility) *gorm.DB {
	if vis.AllStatuses {
		return q
	}
	statuses := make([]string, 0, len(vis.Statuses))
	for _, s := range vis.Statuses {
		statuses = append(statuses, string(s))
	}
	switch {
	case vis.Author != nil && len(statuses) > 0:
		return q.Where("(reviews.status IN ? OR reviews.user_id = ?)", statuses, *vis.Author)
	case vis.Author != nil:
		return q.Where("reviews.user_id = ?", *vis.Author)
	case len(statuses) > 0:
		return q.Where("reviews.status IN ?", statuses)
	}
	return q.Where("1 = 0")
}

// List returns up to page.Limit+1 visible reviews, newest first
func (r *ReviewRepository) List(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility, page entities.PageRequest) ([]*entities.Review, error) {
	order := sortOrder{table: "reviews", column: scope.OrderColumn(), desc: true}
	q, err := paginate(func() *gorm.DB { return r.visible(ctx, scope, vis) }, order, page.Cursor, page.Limit)
	if err != nil {
		return nil, err
	}

	var rows []models.Review
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReviewEntities(rows), nil
}

// Aggregate computes count and mean rating over the same set List pages through
func (r *ReviewRepository) Aggregate(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility) (entities.RatingSummary, error) {
	var row struct {
		Average *float64
		Total   int64
	}
	err := r.visible(ctx, scope, vis).
		Select("CAST(AVG(reviews.rating) AS FLOAT) AS average, COUNT(*) AS total").
		Scan(&row).Error
	if err != nil {
		return entities.RatingSummary{}, err
	}
	if row.Total == 0 {
		return entities.RatingSummary{}, nil
	}
	return entities.RatingSummary{AverageRating: row.Average, Count: row.Total}, nil
}

// CountByUser counts the user's live reviews
func (r *ReviewRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&models.Review{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// ListActiveByProducts loads every live review of the given products
func (r *ReviewRepository) ListActiveByProducts(ctx context.Context, productIDs ...uuid.UUID) ([]*entities.Review, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.Review
	err := GetDB(ctx, r.db).Where("product_id IN ?", productIDs).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toReviewEntities(rows), nil
}

// Reassign moves reviews to another product
func (r *ReviewRepository) Reassign(ctx context.Context, ids []uuid.UUID, productID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&models.Review{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"product_id": productID, "updated_at": time.Now().UTC()}).Error
}

// HardDelete permanently removes reviews
func (r *ReviewRepository) HardDelete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Unscoped().Where("id IN ?", ids).Delete(&models.Review{}).Error
}

// HardDeleteByProduct removes every remaining row of the product, soft-deleted ones included
func (r *ReviewRepository) HardDeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return GetDB(ctx, r.db).Unscoped().Where("product_id = ?", productID).Delete(&models.Review{}).Error
}

func toReviewEntity(m *models.Review) *entities.Review {
	rv := &entities.Review{
		ID:        m.ID,
		ProductID: m.ProductID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Title:     m.Title,
		Comment:   m.Comment,
		Status:    entities.ReviewStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		rv.DeletedAt = &t
	}
	return rv
}

func toReviewEntities(rows []models.Review) []*entities.Review {
	out := make([]*entities.Review, 0, len(rows))
	for i := range rows {
		out = append(out, toReviewEntity(&rows[i]))
	}
	return out
}
