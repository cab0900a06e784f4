package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode"

	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/auth"
	"github.com/arefin/flowboard/internal/model"
	"github.com/arefin/flowboard/internal/repository"
)

const (
	MaxNameLength     = 40
	MinPasswordLength = 8
)

// AuthService handles registration, login, and session validation.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued session token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account and issues a session token.
//
// The email is the login key: it must parse as an address and uniqueness is
// case-insensitive (enforced by the repository on the lowercased form,
// surfacing ErrConflict). The password is bcrypt-hashed before persistence;
// the plaintext is never stored and never logged.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// ErrConflict (duplicate email) passes through verbatim.
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userId", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a session token.
//
// Unknown email and wrong password produce the identical error, so a caller
// cannot probe which addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("userId", user.ID))

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the profile for an authenticated user. Used by the
// /api/me handler after the middleware validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// ValidateToken verifies a session token and returns the userID it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	return s.tokens.Validate(tokenStr)
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	return nil
}

// validatePassword enforces the minimum strength rule: at least 8
// characters with at least one letter and one digit.
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperror.ValidationFailed("password", "password must contain at least one letter and one digit")
	}

	return nil
}
