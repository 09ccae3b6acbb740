package casbin

import (
	"fmt"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// NewGormEnforcer creates a Casbin enforcer with the default admin-guard
// model and a GORM adapter. The adapter creates the casbin_rule table if it
// does not exist.
func NewGormEnforcer(db *gorm.DB) (*casbin.Enforcer, error) {
	a, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create gorm adapter: %w", err)
	}

	m, err := model.NewModelFromString(defaultModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, a)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	if err := e.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	return e, nil
}

// NewServiceWithGorm creates a Service backed by a GORM-persisted enforcer.
func NewServiceWithGorm(db *gorm.DB) (*Service, error) {
	e, err := NewGormEnforcer(db)
	if err != nil {
		return nil, err
	}
	return NewService(e), nil
}
