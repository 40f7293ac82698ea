package policy

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

func IsAdmin(a *Actor) bool {
	return a.HasRole(entities.RoleAdmin)
}

func IsModerator(a *Actor) bool {
	return a.HasRole(entities.RoleModerator)
}

func IsAdminOrModerator(a *Actor) bool {
	return IsAdmin(a) || IsModerator(a)
}

// IsBrandOwner is false for a nil brand
func IsBrandOwner(a *Actor, brandID *uuid.UUID) bool {
	if brandID == nil {
		return false
	}
	return a.OwnsBrand(*brandID)
}

func IsAuthor(a *Actor, userID uuid.UUID) bool {
	return a.IsAuthenticated() && a.UserID == userID
}

// RequireAuthenticated gates operations open to any signed-in user
func RequireAuthenticated(a *Actor) Decision {
	return allowIf(a, "authentication required", a.IsAuthenticated())
}
