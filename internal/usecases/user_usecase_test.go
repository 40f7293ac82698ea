package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"re-view.backend/internal/domain/entities"
	domainerrors "re-view.backend/internal/domain/errors"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/usecases"
	"re-view.backend/pkg/crypto"
)

func strPtr(s string) *string { return &s }

type userDeps struct {
	users   *MockUserRepository
	roles   *MockRoleRepository
	brands  *MockBrandRepository
	reviews *MockReviewRepository
}

func newUserUsecaseForTest() (*usecases.UserUsecase, *userDeps) {
	d := &userDeps{
		users:   new(MockUserRepository),
		roles:   new(MockRoleRepository),
		brands:  new(MockBrandRepository),
		reviews: new(MockReviewRepository),
	}
	return usecases.NewUserUsecase(d.users, d.roles, d.brands, d.reviews), d
}

func TestActorResolver_Resolve(t *testing.T) {
	users, roles, brands := new(MockUserRepository), new(MockRoleRepository), new(MockBrandRepository)
	r := usecases.NewActorResolver(users, roles, brands)
	ctx := context.Background()

	actor, err := r.Resolve(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Nil(t, actor)

	gone := uuid.New()
	users.On("GetByID", ctx, gone).Return(nil, domainerrors.ErrNotFound).Once()
	actor, err = r.Resolve(ctx, gone)
	require.NoError(t, err)
	assert.Nil(t, actor, "deleted users are anonymous")

	id, brandID := uuid.New(), uuid.New()
	users.On("GetByID", ctx, id).Return(&entities.User{ID: id}, nil).Once()
	roles.On("ListByUser", ctx, id).Return([]entities.Role{entities.RoleModerator}, nil).Once()
	brands.On("ListOwnedBrandIDs", ctx, id).Return([]uuid.UUID{brandID}, nil).Once()
	actor, err = r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.True(t, actor.HasRole(entities.RoleModerator))
	assert.True(t, actor.OwnsBrand(brandID))

	broken := uuid.New()
	users.On("GetByID", ctx, broken).Return(&entities.User{ID: broken}, nil).Once()
	roles.On("ListByUser", ctx, broken).Return(nil, errors.New("db down")).Once()
	_, err = r.Resolve(ctx, broken)
	require.Error(t, err)
}

func TestUserUsecase_GetCurrentUser(t *testing.T) {
	uc, d := newUserUsecaseForTest()
	ctx := context.Background()

	_, err := uc.GetCurrentUser(ctx, nil)
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	id := uuid.New()
	actor := policy.NewActor(id, []entities.Role{entities.RoleUser}, nil)
	d.users.On("GetByID", ctx, id).Return(&entities.User{ID: id, Name: "Me"}, nil).Once()
	me, err := uc.GetCurrentUser(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, []entities.Role{entities.RoleUser}, me.Roles)
}

func TestUserUsecase_GetUserByID(t *testing.T) {
	uc, d := newUserUsecaseForTest()
	ctx := context.Background()
	id := uuid.New()

	d.users.On("GetByID", ctx, id).Return(&entities.User{ID: id, Name: "Owner", Email: "secret@re-view.test"}, nil).Once()
	d.roles.On("ListByUser", ctx, id).Return([]entities.Role{entities.RoleOwner}, nil).Once()
	d.brands.On("ListOwnedBrandNames", ctx, id).Return([]string{"Acme"}, nil).Once()
	d.reviews.On("CountByUser", ctx, id).Return(int64(7), nil).Once()

	profile, err := uc.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Owner", profile.Name)
	assert.Equal(t, []string{"Acme"}, profile.OwnedBrands)
	assert.Equal(t, int64(7), profile.ReviewsCount)

	missing := uuid.New()
	d.users.On("GetByID", ctx, missing).Return(nil, domainerrors.ErrNotFound).Once()
	_, err = uc.GetUserByID(ctx, missing)
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeNotFound, appErr.Code)
}

func TestUserUsecase_SearchUsers(t *testing.T) {
	uc, d := newUserUsecaseForTest()
	ctx := context.Background()
	actor := policy.NewActor(uuid.New(), nil, nil)

	_, err := uc.SearchUsers(ctx, nil, "alice")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = uc.SearchUsers(ctx, actor, " al ")
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
	assert.Equal(t, "query", appErr.Fields[0].Field)

	d.users.On("Search", ctx, "alice", 10).Return([]*entities.User{{Name: "Alice"}}, nil).Once()
	found, err := uc.SearchUsers(ctx, actor, "  alice ")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUserUsecase_UpdateUser(t *testing.T) {
	crypto.SetCost(bcrypt.MinCost)
	t.Cleanup(func() { crypto.SetCost(crypto.DefaultCost) })

	uc, d := newUserUsecaseForTest()
	ctx := context.Background()
	id := uuid.New()
	self := policy.NewActor(id, []entities.Role{entities.RoleUser}, nil)
	other := policy.NewActor(uuid.New(), []entities.Role{entities.RoleAdmin}, nil)

	t.Run("validation runs before authorization", func(t *testing.T) {
		_, err := uc.UpdateUser(ctx, nil, id, entities.UserUpdate{Email: strPtr("not-an-email")})
		var appErr *domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainerrors.CodeValidation, appErr.Code)
		assert.Equal(t, "email", appErr.Fields[0].Field)
	})

	t.Run("empty update", func(t *testing.T) {
		_, err := uc.UpdateUser(ctx, self, id, entities.UserUpdate{})
		require.ErrorIs(t, err, domainerrors.ErrBadRequest)
	})

	t.Run("only yourself", func(t *testing.T) {
		_, err := uc.UpdateUser(ctx, other, id, entities.UserUpdate{Name: strPtr("x")})
		require.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("email taken", func(t *testing.T) {
		d.users.On("GetByID", ctx, id).Return(&entities.User{ID: id, Email: "me@re-view.test"}, nil).Once()
		d.users.On("GetByEmail", ctx, "taken@re-view.test").Return(&entities.User{ID: uuid.New()}, nil).Once()
		_, err := uc.UpdateUser(ctx, self, id, entities.UserUpdate{Email: strPtr("Taken@re-view.test")})
		require.ErrorIs(t, err, domainerrors.ErrConflict)
	})

	t.Run("success", func(t *testing.T) {
		d.users.On("GetByID", ctx, id).Return(&entities.User{ID: id, Name: "Old", Email: "me@re-view.test", PasswordHash: "old"}, nil).Once()
		d.users.On("Update", ctx, mock.MatchedBy(func(u *entities.User) bool {
			return u.Name == "New" && crypto.CheckPassword("newpass", u.PasswordHash)
		})).Return(nil).Once()

		updated, err := uc.UpdateUser(ctx, self, id, entities.UserUpdate{Name: strPtr(" New "), Password: strPtr("newpass")})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Name)
		assert.Equal(t, "me@re-view.test", updated.Email)
	})
}
