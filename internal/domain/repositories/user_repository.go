package repositories

import (
	"context"

	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]*entities.User, error)
}

// RoleRepository manages role assignments
type RoleRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Role, error)
	HasRole(ctx context.Context, userID uuid.UUID, role entities.Role) (bool, error)
	// Grant is idempotent
	Grant(ctx context.Context, userID uuid.UUID, role entities.Role) error
	Revoke(ctx context.Context, userID uuid.UUID, role entities.Role) error
}
