package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/internal/interfaces/http/response"
)

type ProductService interface {
	CreateProduct(ctx context.Context, actor *policy.Actor, input *entities.CreateProductInput) (*entities.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	ListProducts(ctx context.Context, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	ListProductsByBrand(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	ListProductsByUser(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	SearchProducts(ctx context.Context, query string) ([]*entities.Product, error)
	UpdateProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.ProductUpdate) (*entities.Product, error)
	DeleteProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	MergeProducts(ctx context.Context, actor *policy.Actor, targetID, mergeID uuid.UUID) (uuid.UUID, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	productUsecase ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productUsecase ProductService) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase}
}

// CreateProduct creates a product, optionally under a brand
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input entities.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.productUsecase.CreateProduct(c.Request.Context(), middleware.GetActor(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, product)
}

// GetProduct returns a live product
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.productUsecase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// ListProducts pages through all products by name
// GET /api/v1/products?limit=&cursor=
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.productUsecase.ListProducts(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListBrandProducts pages through a brand's verified products
// GET /api/v1/brands/:id/products
func (h *ProductHandler) ListBrandProducts(c *gin.Context) {
	brandID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.productUsecase.ListProductsByBrand(c.Request.Context(), middleware.GetActor(c), brandID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListUserProducts pages through the products a user created
// GET /api/v1/users/:id/products
func (h *ProductHandler) ListUserProducts(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.productUsecase.ListProductsByUser(c.Request.Context(), userID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// SearchProducts returns the top matches by name
// GET /api/v1/products/search?q=
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	products, err := h.productUsecase.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": products})
}

// UpdateProduct applies a partial update
// PATCH /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var update entities.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BindError(c, err)
		return
	}

	product, err := h.productUsecase.UpdateProduct(c.Request.Context(), middleware.GetActor(c), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, product)
}

// DeleteProduct soft deletes a product
// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.productUsecase.DeleteProduct(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// MergeProducts folds mergeId into the product in the path
// POST /api/v1/products/:id/merge
func (h *ProductHandler) MergeProducts(c *gin.Context) {
	targetID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.MergeProductsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	id, err := h.productUsecase.MergeProducts(c.Request.Context(), middleware.GetActor(c), targetID, input.MergeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}
