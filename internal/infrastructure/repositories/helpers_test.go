package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/internal/infrastructure/database"
	"re-view.backend/internal/infrastructure/migrations"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err, "open sqlite")
	require.NoError(t, migrations.AutoMigrate(context.Background(), db))
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// fixtures builds rows through the real repositories
type fixtures struct {
	t        *testing.T
	ctx      context.Context
	users    *UserRepository
	roles    *RoleRepository
	brands   *BrandRepository
	products *ProductRepository
	reviews  *ReviewRepository
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	return &fixtures{
		t:        t,
		ctx:      context.Background(),
		users:    NewUserRepository(db),
		roles:    NewRoleRepository(db),
		brands:   NewBrandRepository(db),
		products: NewProductRepository(db),
		reviews:  NewReviewRepository(db),
	}
}

func (f *fixtures) user(name string) *entities.User {
	f.t.Helper()
	u := &entities.User{ID: uuid.New(), Name: name, Email: name + "@re-view.test", PasswordHash: "hash"}
	require.NoError(f.t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixtures) brand(name string, verified bool, owner uuid.UUID) *entities.Brand {
	f.t.Helper()
	b := &entities.Brand{ID: uuid.New(), Name: name, Verified: verified}
	require.NoError(f.t, f.brands.Create(f.ctx, b, owner))
	return b
}

func (f *fixtures) product(name string, brandID *uuid.UUID, verified bool, creator uuid.UUID) *entities.Product {
	f.t.Helper()
	p := &entities.Product{ID: uuid.New(), Name: name, Type: entities.ProductTypeProduct, BrandID: brandID, Verified: verified, CreatedByID: creator}
	require.NoError(f.t, f.products.Create(f.ctx, p))
	return p
}

func (f *fixtures) review(productID, userID uuid.UUID, rating int, status entities.ReviewStatus) *entities.Review {
	f.t.Helper()
	r := &entities.Review{ID: uuid.New(), ProductID: productID, UserID: userID, Rating: rating, Title: "t", Status: status}
	require.NoError(f.t, f.reviews.Create(f.ctx, r))
	// distinct timestamps keep ordering deterministic
	time.Sleep(2 * time.Millisecond)
	return r
}
