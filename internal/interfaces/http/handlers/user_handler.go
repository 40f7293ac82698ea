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

type UserService interface {
	GetCurrentUser(ctx context.Context, actor *policy.Actor) (*entities.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error)
	SearchUsers(ctx context.Context, actor *policy.Actor, query string) ([]*entities.User, error)
	UpdateUser(ctx context.Context, actor *policy.Actor, userID uuid.UUID, update entities.UserUpdate) (*entities.User, error)
}

// UserHandler handles user profile endpoints
type UserHandler struct {
	userUsecase UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase UserService) *UserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

// GetMe returns the signed-in user
// GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userUsecase.GetCurrentUser(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// GetUser returns a user's public profile
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.userUsecase.GetUserByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// SearchUsers matches name or email
// GET /api/v1/users/search?q=
func (h *UserHandler) SearchUsers(c *gin.Context) {
	users, err := h.userUsecase.SearchUsers(c.Request.Context(), middleware.GetActor(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": users})
}

// UpdateUser changes the caller's own profile
// PATCH /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var update entities.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.userUsecase.UpdateUser(c.Request.Context(), middleware.GetActor(c), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
