package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/interfaces/http/response"
	"re-view.backend/pkg/jwt"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionHeader carries a server-side session id instead of a token
	SessionHeader = "X-Session-ID"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// ActorKey is the context key for the resolved *policy.Actor
	ActorKey = "actor"
)

// TokenValidator verifies access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// SessionReader looks up server-side sessions
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

// ActorResolver turns a user id into the actor the policies evaluate
type ActorResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*policy.Actor, error)
}

// ActorMiddleware identifies the caller from a bearer token or a session id
// and stores the resolved actor. A missing or invalid credential leaves the
// request anonymous; endpoints that need a user enforce it themselves.
func ActorMiddleware(tokens TokenValidator, sessions SessionReader, resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID, ok := identify(c, tokens, sessions)
		if !ok {
			c.Next()
			return
		}

		actor, err := resolver.Resolve(ctx, userID)
		if err != nil {
			logger.Error(ctx, "Failed to resolve actor", zap.String("user_id", userID.String()), zap.Error(err))
			response.Error(c, err)
			c.Abort()
			return
		}
		if actor == nil {
			// token for a user that no longer exists
			c.Next()
			return
		}

		c.Set(UserIDKey, actor.UserID)
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, actor.UserID))
		c.Next()
	}
}

func identify(c *gin.Context, tokens TokenValidator, sessions SessionReader) (uuid.UUID, bool) {
	if header := c.GetHeader(AuthorizationHeader); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			logger.Debug(c.Request.Context(), "Ignoring malformed authorization header", zap.String("path", c.Request.URL.Path))
			return uuid.Nil, false
		}
		claims, err := tokens.ValidateAccessToken(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			logger.Debug(c.Request.Context(), "Ignoring invalid access token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			return uuid.Nil, false
		}
		return claims.UserID, true
	}

	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" || sessions == nil {
		return uuid.Nil, false
	}
	data, err := sessions.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, redis.ErrSessionNotFound) {
			logger.Warn(c.Request.Context(), "Session lookup failed", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return data.UserID, true
}

// GetActor returns the caller, or nil for anonymous requests
func GetActor(c *gin.Context) *policy.Actor {
	v, exists := c.Get(ActorKey)
	if !exists {
		return nil
	}
	actor, _ := v.(*policy.Actor)
	return actor
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// RequireAuth rejects anonymous requests
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetActor(c).IsAuthenticated() {
			response.Error(c, domainerrors.Unauthorized("Authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
