package catalog

import (
	"context"
	"fmt"

	"github.com/mmynk/taxava/internal/models"
)

// LoadAllCompanies returns seed and overlay companies merged by ID.
func (c *Catalog) LoadAllCompanies(ctx context.Context) ([]models.Company, error) {
	local, err := c.companies.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load companies: %w", err)
	}
	return Merge(c.seed.Companies(), local), nil
}

// GetCompaniesByUser returns the companies owned by userID, in merged order.
// A user without companies gets an empty slice.
func (c *Catalog) GetCompaniesByUser(ctx context.Context, userID int) ([]models.Company, error) {
	all, err := c.LoadAllCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return companiesOwnedBy(all, userID), nil
}

// GetCompany returns the company with the given ID regardless of owner.
func (c *Catalog) GetCompany(ctx context.Context, id int) (models.Company, error) {
	all, err := c.LoadAllCompanies(ctx)
	if err != nil {
		return models.Company{}, err
	}
	company, ok := find(all, id)
	if !ok {
		return models.Company{}, fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	return company, nil
}

// GetCompanyForUser returns a company only if userID owns it. Companies of
// other users are reported as not found.
func (c *Catalog) GetCompanyForUser(ctx context.Context, userID, companyID int) (models.Company, error) {
	company, err := c.GetCompany(ctx, companyID)
	if err != nil {
		return models.Company{}, err
	}
	if company.UserID != userID {
		return models.Company{}, fmt.Errorf("company %d: %w", companyID, ErrNotFound)
	}
	return company, nil
}

// CreateCompany stores a new company with a freshly allocated ID.
func (c *Catalog) CreateCompany(ctx context.Context, company models.Company) (models.Company, error) {
	if err := c.checkUserRef(ctx, "company", company.UserID); err != nil {
		return models.Company{}, err
	}

	seedCompanies := c.seed.Companies()
	var created models.Company

	_, err := c.companies.Update(ctx, func(local []models.Company) ([]models.Company, error) {
		created = company
		created.ID = NextID(Merge(seedCompanies, local))
		return append(local, created), nil
	})
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	return created, nil
}

// SaveCompany replaces an existing company. Editing a seed company stores
// the edited copy in the overlay, where it shadows the seed version.
func (c *Catalog) SaveCompany(ctx context.Context, company models.Company) (models.Company, error) {
	if err := c.checkUserRef(ctx, "company", company.UserID); err != nil {
		return models.Company{}, err
	}

	seedCompanies := c.seed.Companies()
	_, err := c.companies.Update(ctx, func(local []models.Company) ([]models.Company, error) {
		if _, ok := find(Merge(seedCompanies, local), company.ID); !ok {
			return nil, fmt.Errorf("company %d: %w", company.ID, ErrNotFound)
		}
		return upsert(local, company), nil
	})
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to save company: %w", err)
	}
	return company, nil
}

func (c *Catalog) checkUserRef(ctx context.Context, entity string, userID int) error {
	_, err := c.GetUserByID(ctx, userID)
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &DanglingReferenceError{Entity: entity, Field: "userId", ID: userID}
	}
	return err
}

func companiesOwnedBy(all []models.Company, userID int) []models.Company {
	owned := make([]models.Company, 0)
	for _, company := range all {
		if company.UserID == userID {
			owned = append(owned, company)
		}
	}
	return owned
}
