// Package biz implements the business logic of the admin center.
package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/admin-guard/internal/admincenter/store"
	"github.com/kart-io/admin-guard/internal/model"
	"github.com/kart-io/admin-guard/pkg/utils/errors"
)

// AuthService handles login and token issuance.
type AuthService struct {
	store     store.Factory
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(store store.Factory, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login verifies the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return "", errors.ErrUnauthorized.WithMessage("invalid username or password")
		}
		return "", err
	}
	if user.Status != 1 {
		return "", errors.ErrUnauthorized.WithMessage("account disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.ErrUnauthorized.WithMessage("invalid username or password")
	}
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	})
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Register creates a user account with an encrypted password.
func (s *AuthService) Register(ctx context.Context, username, password, email string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Users().Create(ctx, map[string]interface{}{
		"username":    username,
		"password":    string(hashed),
		"email":       email,
		"status":      1,
		"create_time": time.Now().UnixMilli(),
		"update_time": time.Now().UnixMilli(),
	})
}
