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

type BrandService interface {
	CreateBrand(ctx context.Context, actor *policy.Actor, input *entities.CreateBrandInput) (*entities.Brand, error)
	VerifyBrand(ctx context.Context, actor *policy.Actor, brandID uuid.UUID) (*entities.Brand, error)
	GetBrandByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error)
	SearchBrands(ctx context.Context, query string) ([]*entities.Brand, error)
	ListBrands(ctx context.Context, actor *policy.Actor, page entities.PageRequest) (*entities.Page[*entities.Brand], error)
	ListBrandsByUser(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Brand], error)
}

// BrandHandler handles brand endpoints
type BrandHandler struct {
	brandUsecase BrandService
}

// NewBrandHandler creates a new brand handler
func NewBrandHandler(brandUsecase BrandService) *BrandHandler {
	return &BrandHandler{brandUsecase: brandUsecase}
}

// CreateBrand registers a brand owned by the caller
// POST /api/v1/brands
func (h *BrandHandler) CreateBrand(c *gin.Context) {
	var input entities.CreateBrandInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	brand, err := h.brandUsecase.CreateBrand(c.Request.Context(), middleware.GetActor(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, brand)
}

// VerifyBrand approves a brand and promotes its owner
// POST /api/v1/brands/:id/verify
func (h *BrandHandler) VerifyBrand(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	brand, err := h.brandUsecase.VerifyBrand(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, brand)
}

// GetBrand returns a brand the caller may view
// GET /api/v1/brands/:id
func (h *BrandHandler) GetBrand(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	brand, err := h.brandUsecase.GetBrandByID(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, brand)
}

// SearchBrands returns the top matches by name
// GET /api/v1/brands/search?q=
func (h *BrandHandler) SearchBrands(c *gin.Context) {
	brands, err := h.brandUsecase.SearchBrands(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": brands})
}

// ListBrands pages through brands by name
// GET /api/v1/brands?limit=&cursor=
func (h *BrandHandler) ListBrands(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.brandUsecase.ListBrands(c.Request.Context(), middleware.GetActor(c), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListUserBrands pages through the brands a user owns
// GET /api/v1/users/:id/brands
func (h *BrandHandler) ListUserBrands(c *gin.Context) {
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

	result, err := h.brandUsecase.ListBrandsByUser(c.Request.Context(), middleware.GetActor(c), userID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
