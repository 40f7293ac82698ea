package policy

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// CanMutateProduct evaluates an update against the product's current state.
//
// A verified product may only be changed by an owner of its brand or an
// admin; moving it to another brand also requires owning that brand.
// On an unverified product, linking it to a brand, unlinking it or toggling
// the verified flag is a claim and needs an owner of the brand concerned or
// an admin. Other edits stay with the creator (and, once claimed, with the
// brand's owners and admins).
func CanMutateProduct(a *Actor, p *entities.Product, u entities.ProductUpdate) Decision {
	if !a.IsAuthenticated() {
		return Deny(a, "authentication required")
	}

	if p.Verified {
		d := allowIf(a, "verified products can only be changed by their brand owner or an admin",
			IsAdmin(a),
			IsBrandOwner(a, p.BrandID),
		)
		if u.BrandID != nil && u.ChangesBrand(p.BrandID) {
			d = both(d, canClaim(a, u.BrandID))
		}
		return d
	}

	var decisions []Decision
	if u.ChangesBrand(p.BrandID) {
		if u.ClearBrand {
			decisions = append(decisions, canClaim(a, p.BrandID))
		} else {
			decisions = append(decisions, canClaim(a, u.BrandID))
		}
	}
	if u.TogglesVerified(p.Verified) {
		decisions = append(decisions, canClaim(a, u.ResultingBrand(p.BrandID)))
	}
	if u.TouchesDetails() || len(decisions) == 0 {
		decisions = append(decisions, canEditUnverified(a, p))
	}
	return both(decisions...)
}

func canClaim(a *Actor, brandID *uuid.UUID) Decision {
	return allowIf(a, "only an owner of the brand or an admin can claim or verify products",
		IsAdmin(a),
		IsBrandOwner(a, brandID),
	)
}

func canEditUnverified(a *Actor, p *entities.Product) Decision {
	if !p.IsClaimed() {
		return allowIf(a, "only the creator can change an unclaimed product",
			IsAuthor(a, p.CreatedByID),
		)
	}
	return allowIf(a, "Not the owner, admin",
		IsAuthor(a, p.CreatedByID),
		IsAdmin(a),
		IsBrandOwner(a, p.BrandID),
	)
}

// CanDeleteProduct is limited to the creator and admins; owning the brand
// does not grant it.
func CanDeleteProduct(a *Actor, p *entities.Product) Decision {
	return allowIf(a, "Not the owner, admin",
		IsAuthor(a, p.CreatedByID),
		IsAdmin(a),
	)
}

// CanMergeProducts is restricted to owners of the shared brand. Admins are
// not exempt.
func CanMergeProducts(a *Actor, brandID *uuid.UUID) Decision {
	return allowIf(a, "only brand owners can merge products", IsBrandOwner(a, brandID))
}

// VerifiesOnCreate reports whether a product created by a under brandID
// starts out verified.
func VerifiesOnCreate(a *Actor, brandID *uuid.UUID) bool {
	return IsBrandOwner(a, brandID)
}
