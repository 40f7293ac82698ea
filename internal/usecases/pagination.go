package usecases

import (
	"github.com/google/uuid"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/pkg/utils"
)

func normalizePage(page entities.PageRequest) entities.PageRequest {
	page.Limit = utils.NormalizeLimit(page.Limit)
	return page
}

func brandIDOf(b *entities.Brand) uuid.UUID { return b.ID }
func productIDOf(p *entities.Product) uuid.UUID { return p.ID }
func reviewIDOf(r *entities.Review) uuid.UUID { return r.ID }

func toPage[T any](rows []T, limit int, idOf func(T) uuid.UUID) *entities.Page[T] {
	items, next := utils.SplitPage(rows, limit, idOf)
	if items == nil {
		items = []T{}
	}
	return &entities.Page[T]{Items: items, NextCursor: next}
}
