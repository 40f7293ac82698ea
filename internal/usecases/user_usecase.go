package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/domain/repositories"
	"re-view.backend/pkg/logger"
)

// UserUsecase handles profile reads and self-service updates
type UserUsecase struct {
	userRepo   repositories.UserRepository
	roleRepo   repositories.RoleRepository
	brandRepo  repositories.BrandRepository
	reviewRepo repositories.ReviewRepository
}

// NewUserUsecase creates a new user usecase
func NewUserUsecase(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	brandRepo repositories.BrandRepository,
	reviewRepo repositories.ReviewRepository,
) *UserUsecase {
	return &UserUsecase{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		brandRepo:  brandRepo,
		reviewRepo: reviewRepo,
	}
}

// GetCurrentUser returns the signed-in user with roles
func (u *UserUsecase) GetCurrentUser(ctx context.Context, actor *policy.Actor) (*entities.User, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	user, err := u.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	user.Roles = actor.Roles
	return user, nil
}

// GetUserByID returns the public profile of a user
func (u *UserUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	roles, err := u.roleRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	brands, err := u.brandRepo.ListOwnedBrandNames(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := u.reviewRepo.CountByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entities.UserProfile{
		ID:           user.ID,
		Name:         user.Name,
		Roles:        roles,
		OwnedBrands:  brands,
		ReviewsCount: count,
		CreatedAt:    user.CreatedAt,
	}, nil
}

// SearchUsers matches name or email, returning at most ten users by name
func (u *UserUsecase) SearchUsers(ctx context.Context, actor *policy.Actor, query string) ([]*entities.User, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	q, err := searchQuery(query, searchMinLength)
	if err != nil {
		return nil, err
	}
	return u.userRepo.Search(ctx, q, searchLimit)
}

// UpdateUser applies a self-service profile update
func (u *UserUsecase) UpdateUser(ctx context.Context, actor *policy.Actor, userID uuid.UUID, update entities.UserUpdate) (*entities.User, error) {
	if err := validate(update); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domainerrors.BadRequest("no fields to update")
	}
	if err := policy.CanUpdateUser(actor, userID).Err(); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email != user.Email {
			existing, err := u.userRepo.GetByEmail(ctx, email)
			switch {
			case err == nil && existing.ID != user.ID:
				return nil, domainerrors.Conflict("User with this email already exists")
			case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
				return nil, err
			}
		}
		user.Email = email
	}
	if update.Password != nil {
		hash, err := hashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("User with this email already exists")
		}
		logger.Error(ctx, "Failed to update user", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}
	user.Roles = actor.Roles
	return user, nil
}
