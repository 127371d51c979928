// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"xtagram/internal/models"
	"xtagram/internal/repository"
)

// UserService handles registration, authentication and profile lookups.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// HashPassword returns the SHA-256 hex digest of the plaintext password.
// Authentication is an equality lookup on this digest, so it must stay
// deterministic (no per-user salt).
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a new account. Username and password are trimmed; empty
// fields and duplicate usernames are rejected.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user := &models.User{
		Username:       username,
		PasswordDigest: HashPassword(password),
		AvatarURL:      models.DefaultAvatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate looks up the user by username and password digest. The error
// never reveals whether the username exists.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByCredentials(ctx, username, HashPassword(password))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetByID resolves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
