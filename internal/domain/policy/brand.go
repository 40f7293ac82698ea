package policy

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// CanViewBrand: verified brands are public; unverified ones are visible to
// admins, moderators and the brand's own owners.
func CanViewBrand(a *Actor, brand *entities.Brand) Decision {
	if brand.Verified {
		return Allow()
	}
	if !a.IsAuthenticated() {
		return Deny(a, "Unauthorized access to unverified brand")
	}
	return allowIf(a, "You do not have permission to access this brand",
		IsAdminOrModerator(a),
		IsBrandOwner(a, &brand.ID),
	)
}

// CanVerifyBrand is admin only
func CanVerifyBrand(a *Actor) Decision {
	return allowIf(a, "only admins can verify brands", IsAdmin(a))
}

// CanListUserBrands lets users list their own brands; staff may list anyone's.
func CanListUserBrands(a *Actor, userID uuid.UUID) Decision {
	return allowIf(a, "You do not have permission to view these brands",
		IsAuthor(a, userID),
		IsAdminOrModerator(a),
	)
}

// CanSeeUnverifiedBrands decides whether brand listings include unverified brands
func CanSeeUnverifiedBrands(a *Actor) bool {
	return IsAdmin(a)
}
