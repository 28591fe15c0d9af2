package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/types"
)

type stubRolesRepo struct {
	roles     map[uuid.UUID]*models.Role
	userCount map[uuid.UUID]int64
}

func newStubRolesRepo() *stubRolesRepo {
	return &stubRolesRepo{
		roles:     make(map[uuid.UUID]*models.Role),
		userCount: make(map[uuid.UUID]int64),
	}
}

func (s *stubRolesRepo) add(role models.Role) uuid.UUID {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	s.roles[role.ID] = &role
	return role.ID
}

func (s *stubRolesRepo) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	role.ID = s.add(*role)
	return role, nil
}

func (s *stubRolesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *role
	return &cloned, nil
}

func (s *stubRolesRepo) FindByName(ctx context.Context, name string) (*models.Role, error) {
	for _, role := range s.roles {
		if role.Name == name {
			cloned := *role
			return &cloned, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRolesRepo) List(ctx context.Context) ([]models.Role, error) {
	out := make([]models.Role, 0, len(s.roles))
	for _, role := range s.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (s *stubRolesRepo) Save(ctx context.Context, role *models.Role) error {
	cloned := *role
	s.roles[role.ID] = &cloned
	return nil
}

func (s *stubRolesRepo) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	return s.userCount[roleID], nil
}

func (s *stubRolesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.roles, id)
	return nil
}

func newRolesService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestUpdateMatrixValidatesAllBeforeWriting(t *testing.T) {
	repo := newStubRolesRepo()
	kitchenID := repo.add(models.Role{Name: "kitchen"})

	svc := newRolesService(t, repo)

	_, err := svc.UpdateMatrix(context.Background(), MatrixUpdate{Roles: []MatrixEntry{
		{RoleID: kitchenID, Permissions: types.PermissionSet{Orders: true}},
		{RoleID: uuid.New(), Permissions: types.FullAccess()},
	}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// The valid entry was not applied either.
	kitchen, err := repo.FindByID(context.Background(), kitchenID)
	require.NoError(t, err)
	assert.False(t, kitchen.Permissions.Orders)
}

func TestUpdateMatrixReplacesPermissions(t *testing.T) {
	repo := newStubRolesRepo()
	cashierID := repo.add(models.Role{Name: "cashier", Permissions: types.FullAccess()})

	svc := newRolesService(t, repo)
	updated, err := svc.UpdateMatrix(context.Background(), MatrixUpdate{Roles: []MatrixEntry{
		{RoleID: cashierID, Permissions: types.PermissionSet{Dashboard: true, Orders: true}},
	}})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.True(t, updated[0].Permissions.Orders)
	assert.False(t, updated[0].Permissions.Settings, "replacement is wholesale, not merged")
}

func TestHasPermission(t *testing.T) {
	repo := newStubRolesRepo()
	repo.add(models.Role{Name: "kitchen", Permissions: types.PermissionSet{Orders: true}})

	svc := newRolesService(t, repo)

	ok, err := svc.HasPermission(context.Background(), "kitchen", enums.PermissionOrders)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasPermission(context.Background(), "kitchen", enums.PermissionSettings)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown role names have no access rather than erroring.
	ok, err = svc.HasPermission(context.Background(), "ghost", enums.PermissionOrders)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteRefusesAssignedRole(t *testing.T) {
	repo := newStubRolesRepo()
	adminID := repo.add(models.Role{Name: "admin"})
	repo.userCount[adminID] = 2

	svc := newRolesService(t, repo)
	err := svc.Delete(context.Background(), adminID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}
