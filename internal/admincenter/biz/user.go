package biz

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// UserService handles user business logic. Callers pass field maps that
// already went through the authorization hooks.
type UserService struct {
	store store.Factory
}

// NewUserService creates a new UserService.
func NewUserService(store store.Factory) *UserService {
	return &UserService{store: store}
}

// List lists users matching the filter.
func (s *UserService) List(ctx context.Context, filter map[string]interface{}, offset, limit int) (int64, []map[string]interface{}, error) {
	return s.store.Users().List(ctx, filter, offset, limit)
}

// Create creates a user, encrypting the plaintext password.
func (s *UserService) Create(ctx context.Context, values map[string]interface{}) error {
	password, _ := values["password"].(string)
	if password == "" {
		return errors.ErrBadRequest.WithMessage("password is required")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	values["password"] = string(hashed)
	return s.store.Users().Create(ctx, values)
}

// Update updates the given users. A plaintext password in the field map is
// re-encrypted before storage.
func (s *UserService) Update(ctx context.Context, itemIDs []string, values map[string]interface{}) error {
	if password, ok := values["password"].(string); ok {
		if password == "" {
			delete(values, "password")
		} else {
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return errors.ErrInternal.WithCause(err)
			}
			values["password"] = string(hashed)
		}
	}
	return s.store.Users().Update(ctx, itemIDs, values)
}

// MarkDeleted soft-deletes the given users. It satisfies the item deleter
// interface of the soft-delete admin.
func (s *UserService) MarkDeleted(ctx context.Context, itemIDs []string, deletedAt time.Time) error {
	return s.store.Users().MarkDeleted(ctx, itemIDs, deletedAt.UnixMilli())
}
