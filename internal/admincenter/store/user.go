package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/model"
)

type users struct {
	db *gorm.DB
}

func newUsers(db *gorm.DB) *users {
	return &users{db}
}

func (u *users) live(ctx context.Context) *gorm.DB {
	return u.db.WithContext(ctx).Table("users").Where("delete_time IS NULL")
}

// Create inserts a user from the given field map.
func (u *users) Create(ctx context.Context, values map[string]interface{}) error {
	return wrapErr(u.db.WithContext(ctx).Model(&model.User{}).Create(values).Error)
}

// Update applies the field map to the users with the given ids.
func (u *users) Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error {
	if len(values) == 0 {
		return nil
	}
	return wrapErr(u.live(ctx).Where("id IN ?", itemIDs).Updates(values).Error)
}

// MarkDeleted soft-deletes the users with the given ids.
func (u *users) MarkDeleted(ctx context.Context, itemIDs []string, deletedAtMilli int64) error {
	return wrapErr(u.live(ctx).Where("id IN ?", itemIDs).
		Update("delete_time", deletedAtMilli).Error)
}

// GetByUsername retrieves a live user by username.
func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("username = ? AND delete_time IS NULL", username).
		First(&user).Error; err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

// List lists live users as maps, filtered by exact match on the given
// fields.
func (u *users) List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error) {
	where := func(tx *gorm.DB) *gorm.DB {
		if len(filter) > 0 {
			tx = tx.Where(filter)
		}
		return tx
	}

	var count int64
	if err := where(u.live(ctx)).Count(&count).Error; err != nil {
		return 0, nil, wrapErr(err)
	}

	var items []map[string]interface{}
	if err := where(u.live(ctx)).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, wrapErr(err)
	}
	return count, items, nil
}
