// Package service contains the business logic layer.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (this pkg)  → validates, enforces rules, orchestrates
//	Repository (data)   → reads/writes the store
//
// Services receive repository interfaces, never concrete types, so tests
// inject in-memory mocks and the wiring in internal/server decides which
// implementation runs in production.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/akovacs/plantkeeper/internal/apperror"
	"github.com/akovacs/plantkeeper/internal/auth"
	"github.com/akovacs/plantkeeper/internal/model"
	"github.com/akovacs/plantkeeper/internal/repository"
)

const maxUsernameLength = 50

// AuthService handles registration, login, and account deletion.
type AuthService struct {
	users     repository.UserRepository
	plants    repository.PlantRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	plants repository.PlantRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		plants:    plants,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account. Email is optional — without one the
// user simply receives no reminders.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > maxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", maxUsernameLength))
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Conflict (username taken) passes through as a domain error.
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a session token.
//
// Unknown username and wrong password both return the same Unauthorized
// error — the response must not reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the full user record for an authenticated session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// DeleteAccount removes the user and, as a secondary effect, every plant
// they own. Watering events cascade with the plants. Other users' records
// are untouched — Plant.Owner is a weak reference, so nothing else needs
// cleanup.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.plants.DeleteByOwner(ctx, user.Username); err != nil {
		return fmt.Errorf("service/auth: deleting plants for %s: %w", user.Username, err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service/auth: deleting user %s: %w", userID, err)
	}

	s.logger.Info("account deleted", slog.String("username", user.Username))
	return nil
}
