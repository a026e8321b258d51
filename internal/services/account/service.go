// File: internal/services/account/service.go

// Package account handles registration and login.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"personachat/internal/auth"
	"personachat/internal/domain"
	"personachat/internal/repository/user"
	"personachat/internal/services"
)

var (
	// ErrInvalidCredentials is returned for a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username is already taken")
)

// Service owns the user account lifecycle.
type Service struct {
	users     user.UserRepository
	jwtSecret []byte
	logger    services.Logger
}

// NewService wires the account service.
func NewService(users user.UserRepository, jwtSecret []byte, logger services.Logger) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if len(jwtSecret) == 0 {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Service{users: users, jwtSecret: jwtSecret, logger: logger}, nil
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	u := &domain.User{
		Username:    username,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := u.IsValid(); err != nil {
		return nil, err
	}
	if err := u.HashPassword(password); err != nil {
		return nil, err
	}

	if existing, err := s.users.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", created.ID)
	return created, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := u.ValidatePassword(password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.ID, u.Username, s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("token generation failed: %w", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return token, u, nil
}

// GetUser loads one user by ID.
func (s *Service) GetUser(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}
