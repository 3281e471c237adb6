package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/session"
)

// CompanyInput is the company setup and edit form.
type CompanyInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	MailingAddress string `json:"mailingAddress"`
	ReturnAddress  string `json:"returnAddress"`
	SameAddress    bool   `json:"sameAddress"`
	OwnerName      string `json:"ownerName"`
	OwnerEmail     string `json:"ownerEmail"`
}

// validate checks the form and fills the return address when it mirrors
// the mailing address.
func (in *CompanyInput) validate() error {
	if in.SameAddress {
		in.ReturnAddress = in.MailingAddress
	}
	err := firstError(
		checkName("name", in.Name),
		required("phone", in.Phone),
		required("mailingAddress", in.MailingAddress),
		required("returnAddress", in.ReturnAddress),
		required("ownerName", in.OwnerName),
		required("ownerEmail", in.OwnerEmail),
	)
	if err != nil {
		return err
	}
	if !digitsOnly.MatchString(in.Phone) {
		return invalid("phone", "must contain numbers only")
	}
	if !comEmail.MatchString(in.OwnerEmail) {
		return invalid("ownerEmail", "must be a valid address ending with .com")
	}
	return nil
}

func (in CompanyInput) apply(c models.Company) models.Company {
	c.Name = in.Name
	c.Phone = in.Phone
	c.MailingAddress = in.MailingAddress
	c.ReturnAddress = in.ReturnAddress
	c.SameAddress = in.SameAddress
	c.OwnerName = in.OwnerName
	c.OwnerEmail = in.OwnerEmail
	return c
}

// CompanyService manages the companies of the current user.
type CompanyService struct {
	catalog *catalog.Catalog
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(cat *catalog.Catalog) *CompanyService {
	return &CompanyService{catalog: cat}
}

// List returns the current user's companies filtered and sorted by name.
func (s *CompanyService) List(ctx context.Context, opts ListOptions) ([]models.Company, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	companies, err := s.catalog.GetCompaniesByUser(ctx, sess.UserID())
	if err != nil {
		slog.Error("ListCompanies failed", "user_id", sess.UserID(), "error", err)
		return nil, err
	}

	result := filterAndSort(companies, func(c models.Company) string { return c.Name }, opts)
	slog.Info("ListCompanies successful", "user_id", sess.UserID(), "count", len(result))
	return result, nil
}

// Get returns one of the current user's companies.
func (s *CompanyService) Get(ctx context.Context, id int) (*models.Company, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	company, err := s.catalog.GetCompanyForUser(ctx, sess.UserID(), id)
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Create adds a company owned by the current user.
func (s *CompanyService) Create(ctx context.Context, in CompanyInput) (*models.Company, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateCompany request received", "user_id", sess.UserID(), "name", in.Name)

	if err := in.validate(); err != nil {
		return nil, err
	}

	company, err := s.catalog.CreateCompany(ctx, in.apply(models.Company{UserID: sess.UserID()}))
	if err != nil {
		slog.Error("CreateCompany failed", "user_id", sess.UserID(), "error", err)
		return nil, err
	}

	slog.Info("Company created", "company_id", company.ID, "user_id", company.UserID)
	return &company, nil
}

// Update edits one of the current user's companies. Ownership never changes.
func (s *CompanyService) Update(ctx context.Context, id int, in CompanyInput) (*models.Company, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateCompany request received", "user_id", sess.UserID(), "company_id", id)

	existing, err := s.catalog.GetCompanyForUser(ctx, sess.UserID(), id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	company, err := s.catalog.SaveCompany(ctx, in.apply(existing))
	if err != nil {
		slog.Error("UpdateCompany failed", "company_id", id, "error", err)
		return nil, err
	}

	slog.Info("Company updated", "company_id", company.ID)
	return &company, nil
}
