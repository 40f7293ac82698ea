package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
)

func TestUserRepository_CRUDAndSearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &entities.User{
		ID:           uuid.New(),
		Email:        "alice@re-view.test",
		Name:         "Alice",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@re-view.test")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	u.Name = "Alice Updated"
	u.PasswordHash = "hash2"
	require.NoError(t, repo.Update(ctx, u))
	byID, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Updated", byID.Name)
	assert.Equal(t, "hash2", byID.PasswordHash)

	require.NoError(t, repo.Create(ctx, &entities.User{ID: uuid.New(), Email: "bob@else.test", Name: "Bob", PasswordHash: "h"}))

	found, err := repo.Search(ctx, "re-view", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, u.ID, found[0].ID)

	found, err = repo.Search(ctx, "b", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, repo.SoftDelete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	found, err = repo.Search(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "soft-deleted users are not searchable")
}

func TestUserRepository_SearchEscapesWildcards(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.User{ID: uuid.New(), Email: "x@y.z", Name: "plain", PasswordHash: "h"}))

	found, err := repo.Search(ctx, "%%%", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.User{ID: uuid.New(), Email: "dup@re-view.test", Name: "A", PasswordHash: "h"}))
	err := repo.Create(ctx, &entities.User{ID: uuid.New(), Email: "dup@re-view.test", Name: "B", PasswordHash: "h"})
	require.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.GetByID(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByEmail(ctx, "missing@re-view.test")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = repo.Update(ctx, &entities.User{ID: id, Name: "x"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = repo.SoftDelete(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestRoleRepository_GrantListRevoke(t *testing.T) {
	db := newTestDB(t)
	f := newFixtures(t, db)
	u := f.user("carol")

	require.NoError(t, f.roles.Grant(f.ctx, u.ID, entities.RoleUser))
	require.NoError(t, f.roles.Grant(f.ctx, u.ID, entities.RoleOwner))
	// idempotent
	require.NoError(t, f.roles.Grant(f.ctx, u.ID, entities.RoleOwner))

	roles, err := f.roles.ListByUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []entities.Role{entities.RoleOwner, entities.RoleUser}, roles)

	ok, err := f.roles.HasRole(f.ctx, u.ID, entities.RoleOwner)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.roles.Revoke(f.ctx, u.ID, entities.RoleOwner))
	ok, err = f.roles.HasRole(f.ctx, u.ID, entities.RoleOwner)
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, f.roles.Revoke(f.ctx, u.ID, entities.RoleAdmin), domainerrors.ErrNotFound)
}
