// Package policy decides who may see and change what. Every rule takes the
// acting user explicitly; a nil *Actor is an anonymous caller.
package policy

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// Actor is the authenticated caller along with the facts rules need about
// it: platform roles and the brands it owns.
type Actor struct {
	UserID      uuid.UUID
	Roles       []entities.Role
	OwnedBrands map[uuid.UUID]struct{}
}

// NewActor builds an actor from its roles and owned brand ids
func NewActor(userID uuid.UUID, roles []entities.Role, ownedBrands []uuid.UUID) *Actor {
	owned := make(map[uuid.UUID]struct{}, len(ownedBrands))
	for _, id := range ownedBrands {
		owned[id] = struct{}{}
	}
	return &Actor{UserID: userID, Roles: roles, OwnedBrands: owned}
}

// IsAuthenticated reports whether a is a signed-in user
func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.UserID != uuid.Nil
}

// HasRole reports whether a holds role r
func (a *Actor) HasRole(r entities.Role) bool {
	if !a.IsAuthenticated() {
		return false
	}
	for _, role := range a.Roles {
		if role == r {
			return true
		}
	}
	return false
}

// OwnsBrand reports whether a is listed as an owner of brandID
func (a *Actor) OwnsBrand(brandID uuid.UUID) bool {
	if !a.IsAuthenticated() {
		return false
	}
	_, ok := a.OwnedBrands[brandID]
	return ok
}
