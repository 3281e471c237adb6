package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/session"
)

// PropertyInput is the property setup and edit form.
type PropertyInput struct {
	Name      string              `json:"name"`
	Type      models.PropertyType `json:"type"`
	CompanyID int                 `json:"companyId"`
	OwnerName string              `json:"ownerName"`
	// SameAsCompany copies the owner name from the selected company.
	SameAsCompany bool   `json:"sameAsCompany"`
	ReturnAddress string `json:"returnAddress"`
	// SameAsMailing uses the company's mailing address as return address.
	SameAsMailing bool `json:"sameAsMailing"`
}

func (in PropertyInput) validate() error {
	if err := checkName("name", in.Name); err != nil {
		return err
	}
	if in.Type == "" {
		return invalid("type", "is required")
	}
	if !in.Type.Valid() {
		return invalid("type", "unknown property type")
	}
	if in.CompanyID <= 0 {
		return invalid("companyId", "is required")
	}
	if !in.SameAsCompany && blank(in.OwnerName) {
		return invalid("ownerName", "is required")
	}
	if !in.SameAsMailing && blank(in.ReturnAddress) {
		return invalid("returnAddress", "is required unless same as mailing address")
	}
	return nil
}

// apply fills p from the form, denormalizing contact details from company.
func (in PropertyInput) apply(p models.Property, company models.Company) models.Property {
	p.Name = in.Name
	p.Type = in.Type
	p.CompanyID = company.ID
	p.Phone = company.Phone
	p.MailingAddress = company.MailingAddress

	p.OwnerName = in.OwnerName
	if in.SameAsCompany {
		p.OwnerName = company.OwnerName
	}
	p.ReturnAddress = in.ReturnAddress
	if in.SameAsMailing {
		p.ReturnAddress = company.MailingAddress
	}
	p.SameAddress = in.SameAsMailing
	return p
}

// PropertyService manages the properties of the current user's companies.
type PropertyService struct {
	catalog *catalog.Catalog
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(cat *catalog.Catalog) *PropertyService {
	return &PropertyService{catalog: cat}
}

// List returns the current user's properties filtered and sorted by name.
func (s *PropertyService) List(ctx context.Context, opts ListOptions) ([]models.Property, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	properties, err := s.catalog.GetPropertiesByUser(ctx, sess.UserID())
	if err != nil {
		slog.Error("ListProperties failed", "user_id", sess.UserID(), "error", err)
		return nil, err
	}

	result := filterAndSort(properties, func(p models.Property) string { return p.Name }, opts)
	slog.Info("ListProperties successful", "user_id", sess.UserID(), "count", len(result))
	return result, nil
}

// Get returns one of the current user's properties.
func (s *PropertyService) Get(ctx context.Context, id int) (*models.Property, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	property, err := s.catalog.GetPropertyForUser(ctx, sess.UserID(), id)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// Create adds a property to one of the current user's companies.
func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (*models.Property, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateProperty request received", "user_id", sess.UserID(), "company_id", in.CompanyID, "name", in.Name)

	if err := in.validate(); err != nil {
		return nil, err
	}
	company, err := s.ownedCompany(ctx, sess.UserID(), in.CompanyID)
	if err != nil {
		return nil, err
	}

	property, err := s.catalog.CreateProperty(ctx, in.apply(models.Property{}, company))
	if err != nil {
		slog.Error("CreateProperty failed", "company_id", in.CompanyID, "error", err)
		return nil, err
	}

	slog.Info("Property created", "property_id", property.ID, "company_id", property.CompanyID)
	return &property, nil
}

// Update edits one of the current user's properties. The property may move
// to another company the user owns.
func (s *PropertyService) Update(ctx context.Context, id int, in PropertyInput) (*models.Property, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateProperty request received", "user_id", sess.UserID(), "property_id", id)

	existing, err := s.catalog.GetPropertyForUser(ctx, sess.UserID(), id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	company, err := s.ownedCompany(ctx, sess.UserID(), in.CompanyID)
	if err != nil {
		return nil, err
	}

	property, err := s.catalog.SaveProperty(ctx, in.apply(existing, company))
	if err != nil {
		slog.Error("UpdateProperty failed", "property_id", id, "error", err)
		return nil, err
	}

	slog.Info("Property updated", "property_id", property.ID)
	return &property, nil
}

// ownedCompany resolves the selected company. A missing company is a
// dangling reference; a company of another user is an invalid selection.
func (s *PropertyService) ownedCompany(ctx context.Context, userID, companyID int) (models.Company, error) {
	company, err := s.catalog.GetCompany(ctx, companyID)
	if errors.Is(err, catalog.ErrNotFound) {
		return models.Company{}, &catalog.DanglingReferenceError{Entity: "property", Field: "companyId", ID: companyID}
	}
	if err != nil {
		return models.Company{}, err
	}
	if company.UserID != userID {
		return models.Company{}, invalid("companyId", "selected company is not valid")
	}
	return company, nil
}
