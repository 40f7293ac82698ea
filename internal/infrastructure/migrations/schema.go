// Package migrations owns the database schema. Postgres deployments apply it
// through goose; the embedded sqlite driver and tests use AutoMigrate.
package migrations

import (
	"context"

	"gorm.io/gorm"
	"re-view.backend/internal/infrastructure/models"
)

// partial unique indexes keep soft-deleted rows out of the uniqueness checks
var liveIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_product_user_live ON reviews (product_id, user_id) WHERE deleted_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_name_live ON brands (name) WHERE deleted_at IS NULL`,
}

var dropIndexes = []string{
	`DROP INDEX IF EXISTS idx_reviews_product_user_live`,
	`DROP INDEX IF EXISTS idx_brands_name_live`,
}

func applySchema(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	for _, stmt := range liveIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func dropSchema(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	for _, stmt := range dropIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	all := models.All()
	// reverse dependency order
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return db.Migrator().DropTable(all...)
}

// AutoMigrate applies the current schema directly through gorm
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return applySchema(ctx, db)
}
