package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyPassword      = errors.New("password is required")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidLoginMode   = errors.New("login mode must be email or username")
)

// UserStorage defines the user lookups and writes the authenticator needs.
// *catalog.Catalog satisfies it.
type UserStorage interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUser(ctx context.Context, match func(models.User) bool) (models.User, error)
}

var _ UserStorage = (*catalog.Catalog)(nil)

// PasswordAuthenticator implements password-based authentication.
// Passwords are stored and compared as plain text, matching the seed data.
type PasswordAuthenticator struct {
	storage UserStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// ValidateCredential only requires a non-empty password.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if credential == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Register creates a new user account.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, email, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	user, err := a.storage.CreateUser(ctx, models.User{
		Username: username,
		Email:    email,
		Password: credential,
	})
	if errors.Is(err, catalog.ErrEmailTaken) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Authenticate finds the user whose email or username matches identifier,
// ignoring case, and whose password matches credential exactly. Both are
// checked together because usernames may repeat.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, mode LoginMode, identifier, credential string) (*models.User, error) {
	var field func(models.User) string
	switch mode {
	case LoginByEmail:
		field = func(u models.User) string { return u.Email }
	case LoginByUsername:
		field = func(u models.User) string { return u.Username }
	default:
		return nil, ErrInvalidLoginMode
	}

	user, err := a.storage.FindUser(ctx, func(u models.User) bool {
		return strings.EqualFold(field(u), identifier) && u.Password == credential
	})
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return &user, nil
}
