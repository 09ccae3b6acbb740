package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/model"
)

type roles struct {
	db *gorm.DB
}

func newRoles(db *gorm.DB) *roles {
	return &roles{db}
}

// Create inserts a role from the given field map.
func (r *roles) Create(ctx context.Context, values map[string]interface{}) error {
	return wrapErr(r.db.WithContext(ctx).Model(&model.Role{}).Create(values).Error)
}

// Update applies the field map to the roles with the given ids.
func (r *roles) Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	return wrapErr(r.db.WithContext(ctx).Model(&model.Role{}).
		Where("id IN ?", itemIDs).Updates(values).Error)
}

// Delete removes the roles with the given ids.
func (r *roles) Delete(ctx context.Context, itemIDs []string) error {
	return wrapErr(r.db.WithContext(ctx).Where("id IN ?", itemIDs).Delete(&model.Role{}).Error)
}

// GetByKey retrieves a role by its key.
func (r *roles) GetByKey(ctx context.Context, key string) (*model.Role, error) {
	var role model.Role
	// Map condition so the reserved column name gets quoted.
	if err := r.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&role).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &role, nil
}

// List lists roles as maps, filtered by exact match on the given fields.
func (r *roles) List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error) {
	where := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Table("roles")
		if len(filter) > 0 {
			tx = tx.Where(filter)
		}
		return tx
	}

	var count int64
	if err := where(r.db.WithContext(ctx)).Count(&count).Error; err != nil {
		return 0, nil, wrapErr(err)
	}

	var items []map[string]interface{}
	if err := where(r.db.WithContext(ctx)).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, wrapErr(err)
	}
	return count, items, nil
}
