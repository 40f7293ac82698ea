package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return mapWriteError(err)
	}
	user.CreatedAt, user.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// GetByEmail gets a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("LOWER(email) = ?", strings.ToLower(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// Update updates a user's profile and credentials
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"updated_at":    time.Now().UTC(),
	}

	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return mapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SoftDelete soft deletes a user
func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Search matches name or email case-insensitively, ordered by name
func (r *UserRepository) Search(ctx context.Context, query string, limit int) ([]*entities.User, error) {
	term := likeTerm(query)
	var rows []models.User
	err := GetDB(ctx, r.db).
		Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", term, term).
		Order("name ASC").Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]*entities.User, 0, len(rows))
	for i := range rows {
		users = append(users, toUserEntity(&rows[i]))
	}
	return users, nil
}

func toUserEntity(m *models.User) *entities.User {
	u := &entities.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		u.DeletedAt = &t
	}
	return u
}

// RoleRepository implements role assignment operations
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListByUser returns the user's roles in a stable order
func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.Role, error) {
	var names []string
	err := GetDB(ctx, r.db).Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Order("role ASC").
		Pluck("role", &names).Error
	if err != nil {
		return nil, err
	}
	roles := make([]entities.Role, 0, len(names))
	for _, n := range names {
		roles = append(roles, entities.Role(n))
	}
	return roles, nil
}

// HasRole reports whether the user holds role
func (r *RoleRepository) HasRole(ctx context.Context, userID uuid.UUID, role entities.Role) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, string(role)).
		Count(&count).Error
	return count > 0, err
}

// Grant assigns role; granting an existing role is a no-op
func (r *RoleRepository) Grant(ctx context.Context, userID uuid.UUID, role entities.Role) error {
	m := &models.UserRole{UserID: userID, Role: string(role)}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// Revoke removes role from the user
func (r *RoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role entities.Role) error {
	result := GetDB(ctx, r.db).Where("user_id = ? AND role = ?", userID, string(role)).Delete(&models.UserRole{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
