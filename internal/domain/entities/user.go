package entities

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a platform or brand-scoped role
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
	RoleOwner     Role = "OWNER"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// User represents a user entity
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Roles        []Role     `json:"roles"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// HasRole reports whether the user holds role r
func (u *User) HasRole(r Role) bool {
	for _, role := range u.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// UserProfile is the public view of a user
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Roles        []Role    `json:"roles"`
	OwnedBrands  []string  `json:"ownedBrands"`
	ReviewsCount int64     `json:"reviewsCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SignupInput represents input for creating a user
type SignupInput struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// SigninInput represents input for user login
type SigninInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	User         *User  `json:"user"`
}

// UserUpdate is the typed update request for a user's own profile.
// Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// IsEmpty reports whether the update changes nothing
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}
