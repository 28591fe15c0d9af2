// Package roles manages the role permission matrix consulted by the
// authorization middleware.
package roles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db"
	"github.com/dinesync/backend/pkg/db/models"
	"github.com/dinesync/backend/pkg/enums"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
	"github.com/dinesync/backend/pkg/types"
)

// RoleInput creates or renames a role and sets its full matrix.
type RoleInput struct {
	Name        string              `json:"name" validate:"required,max=64"`
	Permissions types.PermissionSet `json:"permissions"`
}

// MatrixUpdate replaces the permission matrix of multiple roles at once, the
// shape the roles admin screen submits.
type MatrixUpdate struct {
	Roles []MatrixEntry `json:"roles" validate:"required,min=1,dive"`
}

// MatrixEntry is one role's replacement matrix.
type MatrixEntry struct {
	RoleID      uuid.UUID           `json:"role_id" validate:"required"`
	Permissions types.PermissionSet `json:"permissions"`
}

// Repository exposes role persistence.
type Repository interface {
	Create(ctx context.Context, role *models.Role) (*models.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	Save(ctx context.Context, role *models.Role) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a roles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, role *models.Role) (*models.Role, error) {
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *repository) Save(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *repository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Role{}).Error
}

// Service defines role matrix management and permission checks.
type Service interface {
	Create(ctx context.Context, input RoleInput) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	UpdateMatrix(ctx context.Context, input MatrixUpdate) ([]models.Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	HasPermission(ctx context.Context, roleName string, section enums.Permission) (bool, error)
}

type service struct {
	repo Repository
}

// NewService builds a roles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("roles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input RoleInput) (*models.Role, error) {
	role := &models.Role{Name: input.Name, Permissions: input.Permissions}
	if _, err := s.repo.Create(ctx, role); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "role name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create role")
	}
	return role, nil
}

func (s *service) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list roles")
	}
	return roles, nil
}

// UpdateMatrix validates every entry before writing any of them.
func (s *service) UpdateMatrix(ctx context.Context, input MatrixUpdate) ([]models.Role, error) {
	if len(input.Roles) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one role required")
	}

	loaded := make([]*models.Role, 0, len(input.Roles))
	for _, entry := range input.Roles {
		role, err := s.repo.FindByID(ctx, entry.RoleID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role "+entry.RoleID.String()+" not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
		}
		role.Permissions = entry.Permissions
		loaded = append(loaded, role)
	}

	out := make([]models.Role, 0, len(loaded))
	for _, role := range loaded {
		if err := s.repo.Save(ctx, role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save role")
		}
		out = append(out, *role)
	}
	return out, nil
}

// Delete refuses to remove a role that still has users.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count role users")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "role still assigned to users")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete role")
	}
	return nil
}

// HasPermission resolves a role name to its matrix and checks one section.
// Unknown roles simply have no access.
func (s *service) HasPermission(ctx context.Context, roleName string, section enums.Permission) (bool, error) {
	role, err := s.repo.FindByName(ctx, roleName)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load role")
	}
	return role.Permissions.Has(section), nil
}
