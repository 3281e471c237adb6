package auth

import (
	"context"

	"github.com/mmynk/taxava/internal/models"
)

// LoginMode selects which identifier a login attempt uses.
type LoginMode string

const (
	LoginByEmail    LoginMode = "email"
	LoginByUsername LoginMode = "username"
)

// Valid reports whether m is a supported mode.
func (m LoginMode) Valid() bool {
	return m == LoginByEmail || m == LoginByUsername
}

// Authenticator defines the interface for authentication implementations.
// Services depend on this rather than on a concrete credential scheme.
type Authenticator interface {
	// Register creates a new user account with the given username, email and
	// credential. The new account has not onboarded yet.
	Register(ctx context.Context, username, email, credential string) (*models.User, error)

	// Authenticate verifies the credential of the user named by identifier,
	// which is an email or a username depending on mode.
	Authenticate(ctx context.Context, mode LoginMode, identifier, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
