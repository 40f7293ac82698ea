package repositories

import (
	"context"

	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// BrandRepository defines brand and brand ownership operations
type BrandRepository interface {
	// Create stores the brand and records ownerID as its first owner
	Create(ctx context.Context, brand *entities.Brand, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Brand, error)
	GetByName(ctx context.Context, name string) (*entities.Brand, error)
	// List returns up to page.Limit+1 brands ordered by name, each with its
	// verified product count
	List(ctx context.Context, filter entities.BrandFilter, page entities.PageRequest) ([]*entities.Brand, error)
	Search(ctx context.Context, terms []string, limit int) ([]*entities.Brand, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
	// ListOwnerIDs returns owners ordered by user id ascending
	ListOwnerIDs(ctx context.Context, brandID uuid.UUID) ([]uuid.UUID, error)
	ListOwnedBrandIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListOwnedBrandNames(ctx context.Context, userID uuid.UUID) ([]string, error)
}
