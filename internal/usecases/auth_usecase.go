package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/repositories"
	"re-view.backend/pkg/crypto"
	"re-view.backend/pkg/jwt"
	"re-view.backend/pkg/logger"
	"re-view.backend/pkg/redis"
	"re-view.backend/pkg/utils"
)

var (
	hashPassword = crypto.HashPassword
	newSessionID = crypto.NewSessionID
)

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	userRepo     repositories.UserRepository
	roleRepo     repositories.RoleRepository
	uow          repositories.UnitOfWork
	jwtService   *jwt.JWTService
	sessionStore SessionStore
	sessionTTL   time.Duration
}

// NewAuthUsecase creates a new auth usecase. sessionStore may be nil, in
// which case signing in with useSession is rejected.
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
	sessionStore SessionStore,
	sessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		uow:          uow,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// Signup registers a new user holding the USER role
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.SignupInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.Conflict("User with this email already exists")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []entities.Role{entities.RoleUser},
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, user); err != nil {
			return err
		}
		return u.roleRepo.Grant(txCtx, user.ID, entities.RoleUser)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("User with this email already exists")
		}
		logger.Error(ctx, "Signup failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// Signin checks credentials and issues a token pair, or a server-side
// session when input.UseSession is set
func (u *AuthUsecase) Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials()
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.InvalidCredentials()
	}
	if crypto.NeedsRehash(user.PasswordHash) {
		u.rehash(ctx, user, input.Password)
	}

	roles, err := u.roleRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	if input.UseSession {
		return u.startSession(ctx, user)
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}

func (u *AuthUsecase) startSession(ctx context.Context, user *entities.User) (*entities.AuthResponse, error) {
	if u.sessionStore == nil {
		return nil, domainerrors.BadRequest("sessions are not enabled")
	}
	sessionID, err := newSessionID()
	if err != nil {
		return nil, err
	}
	data := &redis.SessionData{UserID: user.ID, Email: user.Email, CreatedAt: time.Now().UTC()}
	if err := u.sessionStore.CreateSession(ctx, sessionID, data, u.sessionTTL); err != nil {
		logger.Error(ctx, "Failed to create session", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}
	return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
}

// Signout ends a server-side session. Unknown sessions are not an error.
func (u *AuthUsecase) Signout(ctx context.Context, sessionID string) error {
	if u.sessionStore == nil || sessionID == "" {
		return nil
	}
	return u.sessionStore.DeleteSession(ctx, sessionID)
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.Unauthorized("Token has expired")
		}
		return nil, domainerrors.Unauthorized("Invalid token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("Invalid token")
		}
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email)
}

// rehash upgrades a hash made under another bcrypt cost. Failures are logged
// and signin proceeds.
func (u *AuthUsecase) rehash(ctx context.Context, user *entities.User, password string) {
	h, err := hashPassword(password)
	if err == nil {
		prev := user.PasswordHash
		user.PasswordHash = h
		if err = u.userRepo.Update(ctx, user); err != nil {
			user.PasswordHash = prev
		}
	}
	if err != nil {
		logger.Warn(ctx, "Password rehash skipped", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
}
