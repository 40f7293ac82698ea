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

const verifiedProductCount = `(SELECT COUNT(*) FROM products p
	WHERE p.brand_id = brands.id AND p.verified = ? AND p.deleted_at IS NULL) AS product_count`

var brandOrder = sortOrder{table: "brands", column: "name"}

// BrandRepository implements brand and ownership operations
type BrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

// Create stores the brand together with its first owner
func (r *BrandRepository) Create(ctx context.Context, brand *entities.Brand, ownerID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	m := &models.Brand{
		ID:       brand.ID,
		Name:     brand.Name,
		Verified: brand.Verified,
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return mapWriteError(err)
		}
		owner := &models.BrandOwner{UserID: ownerID, BrandID: brand.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(owner).Error; err != nil {
			return err
		}
		brand.CreatedAt, brand.UpdatedAt = m.CreatedAt, m.UpdatedAt
		brand.OwnerIDs = []uuid.UUID{ownerID}
		return nil
	})
}

// GetByID gets a live brand with its owners
func (r *BrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Brand, error) {
	var m models.Brand
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	owners, err := r.ListOwnerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	b := toBrandEntity(&m)
	b.OwnerIDs = owners
	return b, nil
}

// GetByName gets a live brand by exact name
func (r *BrandRepository) GetByName(ctx context.Context, name string) (*entities.Brand, error) {
	var m models.Brand
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toBrandEntity(&m), nil
}

// List returns up to page.Limit+1 brands ordered by name, each with its
// verified product count
func (r *BrandRepository) List(ctx context.Context, filter entities.BrandFilter, page entities.PageRequest) ([]*entities.Brand, error) {
	filtered := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Brand{})
		if !filter.IncludeUnverified {
			q = q.Where("brands.verified = ?", true)
		}
		if filter.OwnerID != nil {
			q = q.Where("brands.id IN (SELECT bo.brand_id FROM brand_owners bo WHERE bo.user_id = ?)", *filter.OwnerID)
		}
		return q
	}

	q, err := paginate(filtered, brandOrder, page.Cursor, page.Limit)
	if err != nil {
		return nil, err
	}

	var rows []models.BrandWithCount
	if err := q.Select("brands.*, "+verifiedProductCount, true).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*entities.Brand, 0, len(rows))
	for i := range rows {
		b := toBrandEntity(&rows[i].Brand)
		b.ProductCount = rows[i].ProductCount
		out = append(out, b)
	}
	return out, nil
}

// Search returns verified brands matching any term, ordered by name
func (r *BrandRepository) Search(ctx context.Context, terms []string, limit int) ([]*entities.Brand, error) {
	q := GetDB(ctx, r.db).Model(&models.Brand{}).Where("brands.verified = ?", true)
	q = anyTermLike(q, "brands.name", terms)

	var rows []models.Brand
	if err := q.Order(brandOrder.clause()).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Brand, 0, len(rows))
	for i := range rows {
		out = append(out, toBrandEntity(&rows[i]))
	}
	return out, nil
}

// SetVerified flips the verified flag of a live brand
func (r *BrandRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	result := GetDB(ctx, r.db).Model(&models.Brand{}).Where("id = ?", id).
		Updates(map[string]interface{}{"verified": verified, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListOwnerIDs returns owners ordered by user id ascending
func (r *BrandRepository) ListOwnerIDs(ctx context.Context, brandID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&models.BrandOwner{}).
		Where("brand_id = ?", brandID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListOwnedBrandIDs returns the live brands the user owns
func (r *BrandRepository) ListOwnedBrandIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&models.BrandOwner{}).
		Joins("JOIN brands ON brands.id = brand_owners.brand_id AND brands.deleted_at IS NULL").
		Where("brand_owners.user_id = ?", userID).
		Order("brand_owners.brand_id ASC").
		Pluck("brand_owners.brand_id", &ids).Error
	return ids, err
}

// ListOwnedBrandNames returns the names of the live brands the user owns
func (r *BrandRepository) ListOwnedBrandNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := GetDB(ctx, r.db).Model(&models.Brand{}).
		Joins("JOIN brand_owners ON brand_owners.brand_id = brands.id").
		Where("brand_owners.user_id = ?", userID).
		Order("brands.name ASC").
		Pluck("brands.name", &names).Error
	return names, err
}

func toBrandEntity(m *models.Brand) *entities.Brand {
	b := &entities.Brand{
		ID:        m.ID,
		Name:      m.Name,
		Verified:  m.Verified,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		b.DeletedAt = &t
	}
	return b
}
