package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	roleMocks "spacebook/internal/domains/role/service/mocks"
	userMocks "spacebook/internal/domains/user/mocks"
	"spacebook/internal/domains/user/model"
	"spacebook/internal/domains/user/model/dto"
	"spacebook/internal/domains/user/service"
	cacheMocks "spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"spacebook/shared/principal"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	adaID   = "c0000000-0000-4000-8000-000000000003"
	bobID   = "d0000000-0000-4000-8000-000000000004"
	roleEng = "e0000000-0000-4000-8000-000000000005"
)

var errCacheMiss = errors.New("redis: nil")

func asUser(id string) context.Context {
	return principal.WithContext(context.Background(), principal.New(id, "Ada", "ada@example.com", constant.RoleUser, nil))
}

func asAdmin() context.Context {
	return principal.WithContext(context.Background(), principal.New(adaID, "Ada", "ada@example.com", constant.RoleAdmin, nil))
}

func ada() model.User {
	fullName := "Ada Lovelace"

	return model.User{
		ID:       adaID,
		Email:    "ada@example.com",
		Level:    constant.RoleUser,
		FullName: &fullName,
		Roles:    pq.StringArray{roleEng},
		Active:   true,
	}
}

type fixture struct {
	repo  *userMocks.MockUser
	roles *roleMocks.MockRole
	cache *cacheMocks.MockRedisCache
	svc   service.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := fixture{
		repo:  userMocks.NewMockUser(ctrl),
		roles: roleMocks.NewMockRole(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.roles, cfg, f.cache, otelMocks.NewOtel())

	return f
}

func TestUserService_Get(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		id       string
		setup    func(f fixture)
		wantCode int
	}{
		{
			name: "owner reads own account",
			ctx:  asUser(adaID),
			id:   adaID,
			setup: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ada(), nil)
			},
		},
		{
			name: "admin reads another account",
			ctx:  asAdmin(),
			id:   bobID,
			setup: func(f fixture) {
				bob := ada()
				bob.ID = bobID

				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bob, nil)
			},
		},
		{
			name:     "user cannot read another account",
			ctx:      asUser(adaID),
			id:       bobID,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "anonymous",
			ctx:      context.Background(),
			id:       adaID,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "unknown account",
			ctx:  asAdmin(),
			id:   bobID,
			setup: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository failure",
			ctx:  asAdmin(),
			id:   bobID,
			setup: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, errors.New("connection reset"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			res, err := f.svc.Get(tt.ctx, tt.id)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.id, res.ID)
			assert.Equal(t, []string{roleEng}, res.Roles)
		})
	}
}

func TestUserService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.User, error) {
			assert.Equal(t, constant.FieldCreatedAt, params.SortBy)

			return []model.User{ada()}, nil
		})

	res, err := f.svc.GetAll(asAdmin(), gDto.QueryParams{Page: 1, Limit: 10, SortBy: "password"})
	require.NoError(t, err)

	assert.Equal(t, 11, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "ada@example.com", res.Users[0].Email)
}

func TestUserService_Update(t *testing.T) {
	admin := constant.RoleAdmin
	name := "Ada King"

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(asAdmin(), bobID, dto.UpdateUserRequest{})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("own level is immutable", func(t *testing.T) {
		f := newFixture(t)

		superadmin := constant.RoleSuperAdmin

		err := f.svc.Update(asAdmin(), adaID, dto.UpdateUserRequest{Level: &superadmin})
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("promotes another account", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: bobID}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, constant.RoleAdmin, fields[model.FieldLevel])
				assert.Equal(t, "ada@example.com", fields[constant.FieldModifiedBy])
				assert.NotContains(t, fields, model.FieldActive)

				return nil
			})

		require.NoError(t, f.svc.Update(asAdmin(), bobID, dto.UpdateUserRequest{Level: &admin}))
	})

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		err := f.svc.Update(asAdmin(), bobID, dto.UpdateUserRequest{FullName: &name})
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestUserService_AssignRoles(t *testing.T) {
	t.Run("replaces roles", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ada(), nil)
		f.roles.EXPECT().EnsureExist(gomock.Any(), []string{roleEng, bobID}).Return(nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.StringArray{roleEng, bobID}, fields[model.FieldRoles])

				return nil
			})

		res, err := f.svc.AssignRoles(asAdmin(), adaID, dto.AssignRolesRequest{Roles: []string{roleEng, bobID}})
		require.NoError(t, err)
		assert.Equal(t, []string{roleEng, bobID}, res.Roles)
	})

	t.Run("clears roles", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ada(), nil)
		f.roles.EXPECT().EnsureExist(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, pq.StringArray{}, fields[model.FieldRoles])

				return nil
			})

		res, err := f.svc.AssignRoles(asAdmin(), adaID, dto.AssignRolesRequest{})
		require.NoError(t, err)
		assert.Empty(t, res.Roles)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ada(), nil)
		f.roles.EXPECT().EnsureExist(gomock.Any(), gomock.Any()).Return(failure.BadRequestFromString("role does not exist"))

		_, err := f.svc.AssignRoles(asAdmin(), adaID, dto.AssignRolesRequest{Roles: []string{bobID}})
		assert.EqualError(t, err, "role does not exist")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestUserService_Principal(t *testing.T) {
	t.Run("builds principal from the account", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), "user:principal:"+adaID, gomock.Any()).Return(errCacheMiss)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(ada(), nil)

		p, err := f.svc.Principal(context.Background(), adaID)
		require.NoError(t, err)

		assert.Equal(t, adaID, p.ID)
		assert.Equal(t, "Ada Lovelace", p.Name)
		assert.False(t, p.IsAdmin)
		assert.True(t, p.HasRole(roleEng))
	})

	t.Run("admin level", func(t *testing.T) {
		f := newFixture(t)

		user := ada()
		user.Level = constant.RoleSuperAdmin
		user.FullName = nil

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		p, err := f.svc.Principal(context.Background(), adaID)
		require.NoError(t, err)

		assert.True(t, p.IsAdmin)
		assert.Equal(t, "ada@example.com", p.Name)
	})

	for name, user := range map[string]model.User{
		"deleted account":  {},
		"inactive account": {ID: adaID, Active: false},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errCacheMiss)
			f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

			_, err := f.svc.Principal(context.Background(), adaID)
			assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
		})
	}
}
