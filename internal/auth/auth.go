// Package auth implements the bearer-token auth guarding the command
// channel (SPEC_FULL §6.2), grounded on the teacher's
// internal/service/auth_service.go.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"brewctl/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNoSigningKey    = errors.New("auth: no signing key configured")
)

// Service handles account creation and bearer tokens for the command
// channel. The signing key comes from the bootstrap config
// (internal/config's auth.signing_key, or a per-process random
// fallback) rather than a constant, so a deployment can rotate it
// without a rebuild.
type Service struct {
	repo       *store.AuthRepository
	signingKey []byte
}

func NewService(repo *store.AuthRepository, signingKey string) *Service {
	return &Service{repo: repo, signingKey: []byte(signingKey)}
}

// Claims is the JWT payload carried by a command-channel bearer
// token. Username rides along so a command dispatched off the back
// of this token can be attributed in the event trail (SPEC_FULL §7)
// without a second lookup.
type Claims struct {
	jwt.RegisteredClaims
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// SignUp hashes password and creates a new user.
func (s *Service) SignUp(ctx context.Context, username, password string) (int, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}
	return s.repo.Create(ctx, username, hash)
}

// GenerateToken validates credentials and returns a signed JWT.
func (s *Service) GenerateToken(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(u.ID, u.Username)
}

// ParseToken parses a JWT and returns the user ID and username it was
// issued for.
func (s *Service) ParseToken(accessToken string) (int, string, error) {
	if len(s.signingKey) == 0 {
		return 0, "", ErrNoSigningKey
	}

	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, "", ErrInvalidToken
	}
	return claims.UserID, claims.Username, nil
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *Service) issueToken(userID int, username string) (string, error) {
	if len(s.signingKey) == 0 {
		return "", ErrNoSigningKey
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:   userID,
		Username: username,
	})
	return token.SignedString(s.signingKey)
}
