package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/infrastructure/models"
)

var productOrder = sortOrder{table: "products", column: "name"}

// ProductRepository implements product data operations
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *entities.Product) error {
	m := toProductModel(product)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return mapWriteError(err)
	}
	product.CreatedAt, product.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// GetByID gets a live product
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	return r.get(ctx, GetDB(ctx, r.db), id)
}

// GetByIDForUpdate gets a live product and holds an exclusive row lock on it
// until the surrounding transaction ends
func (r *ProductRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	return r.get(ctx, withRowLock(GetDB(ctx, r.db), lockForUpdate), id)
}

// GetByIDForShare gets a live product and holds a shared row lock on it, so
// the product cannot be merged away until the surrounding transaction ends
func (r *ProductRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	return r.get(ctx, withRowLock(GetDB(ctx, r.db), lockForShare), id)
}

func (r *ProductRepository) get(_ context.Context, db *gorm.DB, id uuid.UUID) (*entities.Product, error) {
	var m models.Product
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toProductEntity(&m), nil
}

// Update writes every mutable column of the product
func (r *ProductRepository) Update(ctx context.Context, product *entities.Product) error {
	updates := map[string]interface{}{
		"name":        product.Name,
		"description": product.Description.Ptr(),
		"type":        string(product.Type),
		"verified":    product.Verified,
		"brand_id":    product.BrandID,
		"updated_at":  time.Now().UTC(),
	}

	result := GetDB(ctx, r.db).Model(&models.Product{}).Where("id = ?", product.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a product
func (r *ProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// HardDelete removes the row permanently
func (r *ProductRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Unscoped().Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns up to page.Limit+1 live products ordered by name
func (r *ProductRepository) List(ctx context.Context, filter entities.ProductFilter, page entities.PageRequest) ([]*entities.Product, error) {
	filtered := func() *gorm.DB {
		q := GetDB(ctx, r.db).Model(&models.Product{})
		if filter.BrandID != nil {
			q = q.Where("products.brand_id = ?", *filter.BrandID)
		}
		if filter.CreatedByID != nil {
			q = q.Where("products.created_by_id = ?", *filter.CreatedByID)
		}
		if filter.VerifiedOnly {
			q = q.Where("products.verified = ?", true)
		}
		return q
	}

	q, err := paginate(filtered, productOrder, page.Cursor, page.Limit)
	if err != nil {
		return nil, err
	}

	var rows []models.Product
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProductEntities(rows), nil
}

// Search returns live products whose name matches any term
func (r *ProductRepository) Search(ctx context.Context, terms []string, limit int) ([]*entities.Product, error) {
	q := anyTermLike(GetDB(ctx, r.db).Model(&models.Product{}), "products.name", terms)

	var rows []models.Product
	if err := q.Order(productOrder.clause()).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProductEntities(rows), nil
}

func toProductModel(p *entities.Product) *models.Product {
	return &models.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description.Ptr(),
		Type:        string(p.Type),
		Verified:    p.Verified,
		BrandID:     p.BrandID,
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductEntity(m *models.Product) *entities.Product {
	p := &entities.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: null.StringFromPtr(m.Description),
		Type:        entities.ProductType(m.Type),
		Verified:    m.Verified,
		BrandID:     m.BrandID,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		p.DeletedAt = &t
	}
	return p
}

func toProductEntities(rows []models.Product) []*entities.Product {
	out := make([]*entities.Product, 0, len(rows))
	for i := range rows {
		out = append(out, toProductEntity(&rows[i]))
	}
	return out
}
