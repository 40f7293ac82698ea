package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/internal/interfaces/http/response"
	"re-view.backend/pkg/jwt"
	"re-view.backend/pkg/logger"
)

const (
	accessCookie  = "token"
	refreshCookie = "refresh_token"
)

type AuthService interface {
	Signup(ctx context.Context, input *entities.SignupInput) (*entities.User, error)
	Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error)
	Signout(ctx context.Context, sessionID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase AuthService) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
	}
}

// Signup handles user registration
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var input entities.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.authUsecase.Signup(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"roles": user.Roles,
		},
	})
}

// Signin handles user login
// POST /api/v1/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var input entities.SigninInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	authResponse, err := h.authUsecase.Signin(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if authResponse.AccessToken != "" {
		setTokenCookies(c, authResponse.AccessToken, authResponse.RefreshToken)
	}
	response.Success(c, http.StatusOK, authResponse)
}

// Signout ends a server-side session
// POST /api/v1/auth/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	if err := h.authUsecase.Signout(c.Request.Context(), c.GetHeader(middleware.SessionHeader)); err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(accessCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"success": true})
}

// RefreshToken rotates a token pair. The refresh token is read from the
// JSON body, falling back to the cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var refreshToken string

	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			logger.Debug(c.Request.Context(), "RefreshToken: ignoring unreadable body", zap.Error(err))
		}
		refreshToken = input.RefreshToken
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	tokenPair, err := h.authUsecase.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	setTokenCookies(c, tokenPair.AccessToken, tokenPair.RefreshToken)
	response.Success(c, http.StatusOK, tokenPair)
}

func setTokenCookies(c *gin.Context, access, refresh string) {
	c.SetCookie(accessCookie, access, 3600*24, "/", "", false, true)
	c.SetCookie(refreshCookie, refresh, 3600*24*7, "/", "", false, true)
}
