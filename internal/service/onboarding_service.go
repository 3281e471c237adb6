package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/session"
)

// Home actions.
const (
	ActionView = "view"
	ActionAdd  = "add"
)

// HomeStatus summarises what the user has set up so far.
type HomeStatus struct {
	HasCompany  bool `json:"hasCompany"`
	HasProperty bool `json:"hasProperty"`
	// CompanyAction is ActionView once a company exists, else ActionAdd.
	CompanyAction string `json:"companyAction"`
	// PropertyAction is ActionView once a property exists, else ActionAdd.
	PropertyAction string `json:"propertyAction"`
}

// OnboardingService drives the home screen and onboarding completion.
type OnboardingService struct {
	catalog *catalog.Catalog
	holder  *session.Holder
}

// NewOnboardingService creates a new OnboardingService.
func NewOnboardingService(cat *catalog.Catalog, holder *session.Holder) *OnboardingService {
	return &OnboardingService{catalog: cat, holder: holder}
}

// Home reports whether the current user owns any companies and properties.
func (s *OnboardingService) Home(ctx context.Context) (*HomeStatus, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	companies, err := s.catalog.GetCompaniesByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}
	properties, err := s.catalog.GetPropertiesByUser(ctx, sess.UserID())
	if err != nil {
		return nil, err
	}

	status := &HomeStatus{
		HasCompany:     len(companies) > 0,
		HasProperty:    len(properties) > 0,
		CompanyAction:  ActionAdd,
		PropertyAction: ActionAdd,
	}
	if status.HasCompany {
		status.CompanyAction = ActionView
	}
	if status.HasProperty {
		status.PropertyAction = ActionView
	}
	return status, nil
}

// Complete marks the current user as onboarded and refreshes the session.
// Completing twice is harmless.
func (s *OnboardingService) Complete(ctx context.Context) (*models.User, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.catalog.MarkOnboarded(ctx, sess.UserID())
	if err != nil {
		slog.Error("Onboarding completion failed", "user_id", sess.UserID(), "error", err)
		return nil, err
	}
	if err := s.holder.Refresh(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("Onboarding completed", "user_id", user.ID)
	public := user.Public()
	return &public, nil
}
