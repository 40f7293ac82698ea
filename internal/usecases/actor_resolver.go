package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/domain/repositories"
)

// ActorResolver loads the facts authorization rules need about a caller
type ActorResolver struct {
	userRepo  repositories.UserRepository
	roleRepo  repositories.RoleRepository
	brandRepo repositories.BrandRepository
}

// NewActorResolver creates a new actor resolver
func NewActorResolver(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	brandRepo repositories.BrandRepository,
) *ActorResolver {
	return &ActorResolver{userRepo: userRepo, roleRepo: roleRepo, brandRepo: brandRepo}
}

// Resolve returns the actor for userID. Unknown or deleted users resolve to
// nil, the anonymous actor.
func (r *ActorResolver) Resolve(ctx context.Context, userID uuid.UUID) (*policy.Actor, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	if _, err := r.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	roles, err := r.roleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := r.brandRepo.ListOwnedBrandIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return policy.NewActor(userID, roles, owned), nil
}
