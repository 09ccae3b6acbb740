package biz

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

const testSecret = "test-secret"

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())
	return factory
}

func TestAuthServiceLogin(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewAuthService(factory, testSecret, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret-pass", "alice@example.com"))

	// The stored password is a hash, not the plaintext.
	user, err := factory.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	token, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "alice", claims.Subject)
}

func TestAuthServiceLoginRejections(t *testing.T) {
	factory := newTestFactory(t)
	svc := NewAuthService(factory, testSecret, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "bob", "correct-pass", ""))

	_, err := svc.Login(ctx, "bob", "wrong-pass")
	require.Error(t, err)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	// Unknown users fail with the same error as bad passwords.
	_, err = svc.Login(ctx, "nobody", "whatever")
	require.Error(t, err)
	assert.True(t, errors.ErrUnauthorized.Is(err))
}

func TestUserServiceSoftDelete(t *testing.T) {
	factory := newTestFactory(t)
	users := NewUserService(factory)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, map[string]interface{}{
		"username": "carol",
		"password": "pass-123",
		"status":   1,
	}))

	_, items, err := users.List(ctx, map[string]interface{}{"username": "carol"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0]["id"]

	require.NoError(t, users.MarkDeleted(ctx, []string{toString(id)}, time.Now()))

	// Soft-deleted rows disappear from listings and lookups.
	count, items, err := users.List(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, items)

	_, err = factory.Users().GetByUsername(ctx, "carol")
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func toString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
