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
	"re-view.backend/pkg/bus"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/utils"
)

// BrandUsecase handles brand registration, verification and listing
type BrandUsecase struct {
	brandRepo repositories.BrandRepository
	roleRepo  repositories.RoleRepository
	uow       repositories.UnitOfWork
	events    EventPublisher
}

// NewBrandUsecase creates a new brand usecase
func NewBrandUsecase(
	brandRepo repositories.BrandRepository,
	roleRepo repositories.RoleRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *BrandUsecase {
	return &BrandUsecase{
		brandRepo: brandRepo,
		roleRepo:  roleRepo,
		uow:       uow,
		events:    events,
	}
}

var errBrandNameTaken = domainerrors.Conflict("Brand with this name already exists.")

// CreateBrand registers an unverified brand owned by the actor
func (u *BrandUsecase) CreateBrand(ctx context.Context, actor *policy.Actor, input *entities.CreateBrandInput) (*entities.Brand, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidField("name", "is required")
	}

	_, err := u.brandRepo.GetByName(ctx, name)
	if err == nil {
		return nil, errBrandNameTaken
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	brand := &entities.Brand{ID: utils.NewID(), Name: name}
	if err := u.brandRepo.Create(ctx, brand, actor.UserID); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, errBrandNameTaken
		}
		logger.Error(ctx, "Failed to create brand", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	owner := actor.UserID
	publish(ctx, u.events, bus.SubjectBrandCreated, BrandEvent{BrandID: brand.ID, Name: brand.Name, OwnerID: &owner, ActorID: actor.UserID})
	return brand, nil
}

// VerifyBrand marks a brand verified and, when none of its owners holds the
// OWNER role yet, grants it to the owner with the lowest user id. Both
// changes commit together.
func (u *BrandUsecase) VerifyBrand(ctx context.Context, actor *policy.Actor, brandID uuid.UUID) (*entities.Brand, error) {
	if err := policy.CanVerifyBrand(actor).Err(); err != nil {
		return nil, err
	}

	var (
		verified *entities.Brand
		promoted *uuid.UUID
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		brand, err := u.brandRepo.GetByID(txCtx, brandID)
		if err != nil {
			return notFound(err, "Brand not found")
		}
		if !brand.IsClaimed() {
			return domainerrors.NotFound("Brand not found or has no associated users.")
		}

		hasOwner := false
		for _, ownerID := range brand.OwnerIDs {
			ok, err := u.roleRepo.HasRole(txCtx, ownerID, entities.RoleOwner)
			if err != nil {
				return err
			}
			if ok {
				hasOwner = true
				break
			}
		}
		if !hasOwner {
			first := brand.OwnerIDs[0]
			if err := u.roleRepo.Grant(txCtx, first, entities.RoleOwner); err != nil {
				return err
			}
			promoted = &first
		}

		if err := u.brandRepo.SetVerified(txCtx, brand.ID, true); err != nil {
			return err
		}
		brand.Verified = true
		verified = brand
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Failed to verify brand", zap.String("brand_id", brandID.String()), zap.Error(err))
		return nil, err
	}

	publish(ctx, u.events, bus.SubjectBrandVerified, BrandEvent{BrandID: verified.ID, Name: verified.Name, OwnerID: promoted, ActorID: actor.UserID})
	return verified, nil
}

// GetBrandByID returns a brand the actor may view
func (u *BrandUsecase) GetBrandByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error) {
	brand, err := u.brandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Brand not found")
	}
	if err := policy.CanViewBrand(actor, brand).Err(); err != nil {
		return nil, err
	}
	return brand, nil
}

// SearchBrands returns up to ten verified brands whose name contains any
// word of the query. One character is enough.
func (u *BrandUsecase) SearchBrands(ctx context.Context, query string) ([]*entities.Brand, error) {
	q, err := searchQuery(query, brandSearchMinLength)
	if err != nil {
		return nil, err
	}
	return u.brandRepo.Search(ctx, strings.Fields(q), searchLimit)
}

// ListBrands pages through brands by name. Admins also see unverified brands.
func (u *BrandUsecase) ListBrands(ctx context.Context, actor *policy.Actor, page entities.PageRequest) (*entities.Page[*entities.Brand], error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	page = normalizePage(page)
	filter := entities.BrandFilter{IncludeUnverified: policy.CanSeeUnverifiedBrands(actor)}
	rows, err := u.brandRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return toPage(rows, page.Limit, brandIDOf), nil
}

// ListBrandsByUser pages through the brands a user owns, verified or not
func (u *BrandUsecase) ListBrandsByUser(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Brand], error) {
	if err := policy.CanListUserBrands(actor, userID).Err(); err != nil {
		return nil, err
	}
	page = normalizePage(page)
	filter := entities.BrandFilter{IncludeUnverified: true, OwnerID: &userID}
	rows, err := u.brandRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return toPage(rows, page.Limit, brandIDOf), nil
}
