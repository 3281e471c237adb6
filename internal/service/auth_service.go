package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/session"
)

// Next steps returned after login.
const (
	NextHome       = "home"
	NextOnboarding = "onboarding"
)

// RegisterRequest is the account creation form.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// LoginRequest is the login form. Identifier is an email or a username
// depending on Mode.
type LoginRequest struct {
	Mode       auth.LoginMode `json:"mode"`
	Identifier string         `json:"identifier"`
	Password   string         `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
	// Next is NextHome for onboarded users, NextOnboarding otherwise.
	Next string `json:"next"`
}

// AuthService implements account creation, login and logout.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	holder        *session.Holder
	catalog       *catalog.Catalog
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, holder *session.Holder, cat *catalog.Catalog, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		holder:        holder,
		catalog:       cat,
		logger:        logger,
	}
}

// Register creates a new account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	s.logger.Info("Register request", "email", req.Email)

	err := firstError(
		required("username", req.Username),
		required("email", req.Email),
		required("password", req.Password),
		required("passwordConfirm", req.PasswordConfirm),
	)
	if err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, invalid("passwordConfirm", "passwords do not match")
	}

	user, err := s.authenticator.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", req.Email, "error", err)
		return nil, err
	}

	public := user.Public()
	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return &public, nil
}

// Login authenticates the user, makes them the current user and issues a token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	s.logger.Info("Login request", "mode", req.Mode, "identifier", req.Identifier)

	if !req.Mode.Valid() {
		return nil, invalid("mode", auth.ErrInvalidLoginMode.Error())
	}
	if err := firstError(required("identifier", req.Identifier), required("password", req.Password)); err != nil {
		return nil, err
	}

	user, err := s.authenticator.Authenticate(ctx, req.Mode, req.Identifier, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "identifier", req.Identifier, "error", err)
		return nil, err
	}

	if err := s.holder.Set(ctx, *user); err != nil {
		s.logger.Error("Failed to start session", "user_id", user.ID, "error", err)
		return nil, err
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	next := NextOnboarding
	if user.HasOnboarded {
		next = NextHome
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "next", next)
	return &LoginResult{User: user.Public(), Token: token, Next: next}, nil
}

// Logout ends the current session. Outstanding tokens stop working.
func (s *AuthService) Logout(ctx context.Context) error {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.holder.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("User logged out", "user_id", sess.UserID())
	return nil
}

// CurrentUser returns the logged-in user as currently stored.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.catalog.GetUserByID(ctx, sess.UserID())
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}

	public := user.Public()
	return &public, nil
}

// ForgotPassword reports whether an account exists for email. No mail is sent.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (bool, error) {
	if err := required("email", email); err != nil {
		return false, err
	}

	_, err := s.catalog.FindUserByEmail(ctx, email)
	if errors.Is(err, catalog.ErrNotFound) {
		s.logger.Info("Password reset requested for unknown email", "email", email)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up email: %w", err)
	}

	s.logger.Info("Password reset requested", "email", email)
	return true, nil
}
