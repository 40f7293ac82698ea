// Package merge plans how reviews are reconciled when one product is folded
// into another.
package merge

import (
	"bytes"

	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
)

// Plan lists what happens to each live review of the two products.
type Plan struct {
	// Keep holds one review per author, the one that survives.
	Keep []*entities.Review
	// Reassign are the kept reviews that currently sit on the source product.
	Reassign []*entities.Review
	// Discard are permanently removed.
	Discard []*entities.Review
}

// Resolve keeps, for every author, the review with the highest rating across
// both products. Equal ratings keep the review with the lowest id so the
// outcome never depends on input order.
func Resolve(targetID uuid.UUID, reviews []*entities.Review) Plan {
	best := make(map[uuid.UUID]*entities.Review, len(reviews))
	order := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		cur, seen := best[r.UserID]
		if !seen {
			order = append(order, r.UserID)
			best[r.UserID] = r
			continue
		}
		if beats(r, cur) {
			best[r.UserID] = r
		}
	}

	var plan Plan
	kept := make(map[uuid.UUID]struct{}, len(best))
	for _, userID := range order {
		r := best[userID]
		kept[r.ID] = struct{}{}
		plan.Keep = append(plan.Keep, r)
		if r.ProductID != targetID {
			plan.Reassign = append(plan.Reassign, r)
		}
	}
	for _, r := range reviews {
		if _, ok := kept[r.ID]; !ok {
			plan.Discard = append(plan.Discard, r)
		}
	}
	return plan
}

func beats(a, b *entities.Review) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// IDs collects review ids
func IDs(reviews []*entities.Review) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	return ids
}
