package usecases

import (
	"bytes"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/merge"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/domain/repositories"
	"re-view.backend/pkg/bus"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/metrics"
	"re-view.backend/pkg/utils"
)

// ProductUsecase handles product lifecycle, claiming and merging
type ProductUsecase struct {
	productRepo repositories.ProductRepository
	brandRepo   repositories.BrandRepository
	reviewRepo  repositories.ReviewRepository
	uow         repositories.UnitOfWork
	events      EventPublisher
	metrics     *metrics.Registry
}

// NewProductUsecase creates a new product usecase
func NewProductUsecase(
	productRepo repositories.ProductRepository,
	brandRepo repositories.BrandRepository,
	reviewRepo repositories.ReviewRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
	m *metrics.Registry,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		brandRepo:   brandRepo,
		reviewRepo:  reviewRepo,
		uow:         uow,
		events:      events,
		metrics:     m,
	}
}

// CreateProduct creates a product. It starts out verified only when the
// actor owns the brand it is filed under.
func (u *ProductUsecase) CreateProduct(ctx context.Context, actor *policy.Actor, input *entities.CreateProductInput) (*entities.Product, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, invalidField("type", "must be one of: PRODUCT, SERVICE")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidField("name", "is required")
	}
	if input.BrandID != nil {
		if _, err := u.brandRepo.GetByID(ctx, *input.BrandID); err != nil {
			return nil, notFound(err, "Brand not found")
		}
	}

	product := &entities.Product{
		ID:          utils.NewID(),
		Name:        name,
		Description: null.StringFromPtr(input.Description),
		Type:        input.Type,
		BrandID:     input.BrandID,
		Verified:    policy.VerifiesOnCreate(actor, input.BrandID),
		CreatedByID: actor.UserID,
	}
	if err := u.productRepo.Create(ctx, product); err != nil {
		logger.Error(ctx, "Failed to create product", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	publish(ctx, u.events, bus.SubjectProductCreated, ProductEvent{ProductID: product.ID, BrandID: product.BrandID, ActorID: actor.UserID})
	return product, nil
}

// GetProductByID returns a live product
func (u *ProductUsecase) GetProductByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	return product, nil
}

// ListProducts pages through every live product by name
func (u *ProductUsecase) ListProducts(ctx context.Context, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	return u.list(ctx, entities.ProductFilter{}, page)
}

// ListProductsByBrand pages through the verified products of a brand the
// actor may view
func (u *ProductUsecase) ListProductsByBrand(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	brand, err := u.brandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, notFound(err, "Brand not found")
	}
	if err := policy.CanViewBrand(actor, brand).Err(); err != nil {
		return nil, err
	}
	return u.list(ctx, entities.ProductFilter{BrandID: &brandID, VerifiedOnly: true}, page)
}

// ListProductsByUser pages through the products a user created
func (u *ProductUsecase) ListProductsByUser(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	return u.list(ctx, entities.ProductFilter{CreatedByID: &userID}, page)
}

func (u *ProductUsecase) list(ctx context.Context, filter entities.ProductFilter, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	page = normalizePage(page)
	rows, err := u.productRepo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return toPage(rows, page.Limit, productIDOf), nil
}

// SearchProducts returns up to ten products whose name contains any word of
// the query
func (u *ProductUsecase) SearchProducts(ctx context.Context, query string) ([]*entities.Product, error) {
	q, err := searchQuery(query, searchMinLength)
	if err != nil {
		return nil, err
	}
	return u.productRepo.Search(ctx, strings.Fields(q), searchLimit)
}

// UpdateProduct validates the update, authorizes it against the product's
// current state and applies it
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.ProductUpdate) (*entities.Product, error) {
	if err := validate(update); err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, domainerrors.BadRequest("no fields to update")
	}

	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	if update.BrandID != nil {
		if _, err := u.brandRepo.GetByID(ctx, *update.BrandID); err != nil {
			return nil, notFound(err, "Brand not found")
		}
	}

	if err := policy.CanMutateProduct(actor, product, update).Err(); err != nil {
		return nil, err
	}
	if update.Verified != nil && *update.Verified && update.ResultingBrand(product.BrandID) == nil {
		return nil, domainerrors.BadRequest("a product must belong to a brand to be verified")
	}

	update.Apply(product)
	if err := u.productRepo.Update(ctx, product); err != nil {
		logger.Error(ctx, "Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		return nil, notFound(err, "Product not found")
	}
	return product, nil
}

// DeleteProduct soft deletes a product
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	product, err := u.productRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Product not found")
	}
	if err := policy.CanDeleteProduct(actor, product).Err(); err != nil {
		return err
	}
	if err := u.productRepo.SoftDelete(ctx, id); err != nil {
		logger.Error(ctx, "Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		return notFound(err, "Product not found")
	}

	publish(ctx, u.events, bus.SubjectProductDeleted, ProductEvent{ProductID: id, BrandID: product.BrandID, ActorID: actor.UserID})
	return nil
}

// MergeProducts folds mergeID into targetID. For every author the highest
// rated review across both products survives on the target; the rest and
// the merged product are removed permanently. Everything happens in one
// transaction.
// lockMergePair takes FOR UPDATE on both products in id order, so two merges
// over the same pair queue instead of deadlocking.
func (u *ProductUsecase) lockMergePair(ctx context.Context, targetID, mergeID uuid.UUID) (*entities.Product, *entities.Product, error) {
	order := []uuid.UUID{targetID, mergeID}
	if bytes.Compare(mergeID[:], targetID[:]) < 0 {
		order[0], order[1] = mergeID, targetID
	}

	locked := make(map[uuid.UUID]*entities.Product, len(order))
	for _, id := range order {
		product, err := u.productRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if id == targetID {
				return nil, nil, notFound(err, "Target product not found")
			}
			return nil, nil, notFound(err, "Merge product not found")
		}
		locked[id] = product
	}
	return locked[targetID], locked[mergeID], nil
}

func (u *ProductUsecase) MergeProducts(ctx context.Context, actor *policy.Actor, targetID, mergeID uuid.UUID) (uuid.UUID, error) {
	if err := policy.RequireAuthenticated(actor).Err(); err != nil {
		return uuid.Nil, err
	}
	if targetID == mergeID {
		return uuid.Nil, domainerrors.BadRequest("cannot merge a product into itself")
	}

	var (
		plan  merge.Plan
		brand uuid.UUID
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		// both rows stay locked until commit so no review can be posted to
		// either product between the listing below and the purge
		target, source, err := u.lockMergePair(txCtx, targetID, mergeID)
		if err != nil {
			return err
		}
		if target.BrandID == nil || source.BrandID == nil {
			return domainerrors.BadRequest("both products must belong to a brand")
		}
		if *target.BrandID != *source.BrandID {
			return domainerrors.BadRequest("products belong to different brands")
		}
		if err := policy.CanMergeProducts(actor, target.BrandID).Err(); err != nil {
			return err
		}
		brand = *target.BrandID

		reviews, err := u.reviewRepo.ListActiveByProducts(txCtx, targetID, mergeID)
		if err != nil {
			return err
		}
		plan = merge.Resolve(targetID, reviews)

		// must precede Reassign: live reviews are unique per (product, user)
		if err := u.reviewRepo.HardDelete(txCtx, merge.IDs(plan.Discard)); err != nil {
			return err
		}
		if err := u.reviewRepo.Reassign(txCtx, merge.IDs(plan.Reassign), targetID); err != nil {
			return err
		}
		if err := u.reviewRepo.HardDeleteByProduct(txCtx, mergeID); err != nil {
			return err
		}
		return u.productRepo.HardDelete(txCtx, mergeID)
	})
	if err != nil {
		logger.Error(ctx, "Product merge failed",
			zap.String("target_id", targetID.String()),
			zap.String("merge_id", mergeID.String()),
			zap.Error(err),
		)
		return uuid.Nil, err
	}

	u.metrics.ProductMerged(len(plan.Discard))
	publish(ctx, u.events, bus.SubjectProductMerged, MergeEvent{
		TargetID:   targetID,
		MergedID:   mergeID,
		BrandID:    brand,
		Reassigned: merge.IDs(plan.Reassign),
		Discarded:  merge.IDs(plan.Discard),
		ActorID:    actor.UserID,
	})
	return targetID, nil
}
