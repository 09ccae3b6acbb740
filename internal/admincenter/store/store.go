// Package store implements the storage layer of the admin center.
package store

import (
	"context"
	basicerrors "errors"

	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/model"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Users() UserStore
	Roles() RoleStore

	// TableReader returns a reader serving rows of the table as maps,
	// restricted by the optional condition.
	TableReader(table string, condition string, args ...interface{}) TableReader

	// DB exposes the underlying connection for the policy adapter.
	DB() *gorm.DB

	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface. Write operations take the
// field maps produced by the authorization hooks, so denied fields can
// never reach the database.
type UserStore interface {
	Create(ctx context.Context, values map[string]interface{}) error
	Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error
	MarkDeleted(ctx context.Context, itemIDs []string, deletedAtMilli int64) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error)
}

// RoleStore defines the role storage interface.
type RoleStore interface {
	Create(ctx context.Context, values map[string]interface{}) error
	Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error
	Delete(ctx context.Context, itemIDs []string) error
	GetByKey(ctx context.Context, key string) (*model.Role, error)
	List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error)
}

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a storage factory over the given connection.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Roles returns the role store.
func (ds *datastore) Roles() RoleStore {
	return newRoles(ds.db)
}

// TableReader returns a map-row reader over the table.
func (ds *datastore) TableReader(table string, condition string, args ...interface{}) TableReader {
	return TableReader{db: ds.db, table: table, condition: condition, args: args}
}

// DB returns the underlying connection.
func (ds *datastore) DB() *gorm.DB {
	return ds.db
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.User{},
		&model.Role{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TableReader reads table rows as maps, for the generic read endpoint.
type TableReader struct {
	db        *gorm.DB
	table     string
	condition string
	args      []interface{}
}

// ReadItems loads the rows with the given ids, keeping only the rows the
// condition accepts.
func (r TableReader) ReadItems(ctx context.Context, itemIDs []string) ([]map[string]interface{}, error) {
	tx := r.db.WithContext(ctx).Table(r.table).Where("id IN ?", itemIDs)
	if r.condition != "" {
		tx = tx.Where(r.condition, r.args...)
	}
	var items []map[string]interface{}
	if err := tx.Find(&items).Error; err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return items, nil
}

// wrapErr maps storage errors to the service error taxonomy.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if basicerrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrNotFound.WithCause(err)
	}
	if basicerrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrAlreadyExists.WithCause(err)
	}
	return errors.ErrDatabase.WithCause(err)
}
