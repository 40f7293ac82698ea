package policy

import "github.com/google/uuid"

// CanUpdateUser lets users edit only themselves
func CanUpdateUser(a *Actor, userID uuid.UUID) Decision {
	return allowIf(a, "you can only update your own profile", IsAuthor(a, userID))
}
