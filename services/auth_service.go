package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// AuthService authenticates the single admin account. There is no user
// table: the admin password hash lives in configuration and a valid login
// yields a short-lived JWT for the mutating endpoints.
type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthService(adminPasswordHash, jwtSecret string) AuthService {
	return &authService{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
	}
}

func (s *authService) Login(_ context.Context, password string) (string, error) {
	err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
