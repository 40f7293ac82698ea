package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/pkg/redis"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]*entities.User, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// Mock RoleRepository
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Role), args.Error(1)
}

func (m *MockRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, role entities.Role) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepository) Grant(ctx context.Context, userID uuid.UUID, role entities.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *MockRoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role entities.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

// Mock BrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) Create(ctx context.Context, brand *entities.Brand, ownerID uuid.UUID) error {
	return m.Called(ctx, brand, ownerID).Error(0)
}

func (m *MockBrandRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Brand), args.Error(1)
}

func (m *MockBrandRepository) GetByName(ctx context.Context, name string) (*entities.Brand, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Brand), args.Error(1)
}

func (m *MockBrandRepository) List(ctx context.Context, filter entities.BrandFilter, page entities.PageRequest) ([]*entities.Brand, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Brand), args.Error(1)
}

func (m *MockBrandRepository) Search(ctx context.Context, terms []string, limit int) ([]*entities.Brand, error) {
	args := m.Called(ctx, terms, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Brand), args.Error(1)
}

func (m *MockBrandRepository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}

func (m *MockBrandRepository) ListOwnerIDs(ctx context.Context, brandID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBrandRepository) ListOwnedBrandIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBrandRepository) ListOwnedBrandNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Mock ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entities.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *entities.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, filter entities.ProductFilter, page entities.PageRequest) ([]*entities.Product, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Product), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, terms []string, limit int) ([]*entities.Product, error) {
	args := m.Called(ctx, terms, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Product), args.Error(1)
}

// Mock ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) GetActiveByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entities.Review, error) {
	args := m.Called(ctx, productID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *entities.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *MockReviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ReviewStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockReviewRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockReviewRepository) List(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility, page entities.PageRequest) ([]*entities.Review, error) {
	args := m.Called(ctx, scope, vis, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Aggregate(ctx context.Context, scope entities.ReviewScope, vis entities.ReviewVisibility) (entities.RatingSummary, error) {
	args := m.Called(ctx, scope, vis)
	return args.Get(0).(entities.RatingSummary), args.Error(1)
}

func (m *MockReviewRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewRepository) ListActiveByProducts(ctx context.Context, productIDs ...uuid.UUID) ([]*entities.Review, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewRepository) Reassign(ctx context.Context, ids []uuid.UUID, productID uuid.UUID) error {
	return m.Called(ctx, ids, productID).Error(0)
}

func (m *MockReviewRepository) HardDelete(ctx context.Context, ids []uuid.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockReviewRepository) HardDeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return m.Called(ctx, productID).Error(0)
}

// Mock EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, v any) error {
	return m.Called(ctx, subject, v).Error(0)
}

// Mock SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	return m.Called(ctx, sessionID, data, expiration).Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.SessionData), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

// recordingLocker runs fn directly and remembers the keys it was asked for
type recordingLocker struct {
	keys []string
	err  error
}

func (l *recordingLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return l.err
	}
	return fn(ctx)
}
