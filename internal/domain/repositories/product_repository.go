package repositories

import (
	"context"

	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// ProductRepository defines product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	// GetByIDForUpdate and GetByIDForShare lock the row for the rest of the
	// transaction carried by ctx
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// HardDelete removes the row permanently
	HardDelete(ctx context.Context, id uuid.UUID) error
	// List returns up to page.Limit+1 products ordered by name
	List(ctx context.Context, filter entities.ProductFilter, page entities.PageRequest) ([]*entities.Product, error)
	Search(ctx context.Context, terms []string, limit int) ([]*entities.Product, error)
}
