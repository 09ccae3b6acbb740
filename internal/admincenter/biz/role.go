package biz

import (
	"context"

	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/internal/model"
)

// RoleService handles role business logic.
type RoleService struct {
	store store.Factory
}

// NewRoleService creates a new RoleService.
func NewRoleService(store store.Factory) *RoleService {
	return &RoleService{store: store}
}

// List lists roles matching the filter.
func (s *RoleService) List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error) {
	return s.store.Roles().List(ctx, filter, offset, limit)
}

// Create creates a role.
func (s *RoleService) Create(ctx context.Context, values map[string]interface{}) error {
	return s.store.Roles().Create(ctx, values)
}

// Update updates the given roles.
func (s *RoleService) Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error {
	return s.store.Roles().Update(ctx, itemIDs, values)
}

// Delete removes the given roles.
func (s *RoleService) Delete(ctx context.Context, itemIDs []string) error {
	return s.store.Roles().Delete(ctx, itemIDs)
}

// GetByKey retrieves a role by its key.
func (s *RoleService) GetByKey(ctx context.Context, key string) (*model.Role, error) {
	return s.store.Roles().GetByKey(ctx, key)
}
