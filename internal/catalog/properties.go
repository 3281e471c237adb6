package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/taxava/internal/models"
)

// LoadAllProperties returns seed and overlay properties merged by ID.
func (c *Catalog) LoadAllProperties(ctx context.Context) ([]models.Property, error) {
	local, err := c.properties.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	return Merge(c.seed.Properties(), local), nil
}

// GetPropertiesByUser returns the properties whose owning company belongs
// to userID, in merged order. A user without companies gets an empty slice.
func (c *Catalog) GetPropertiesByUser(ctx context.Context, userID int) ([]models.Property, error) {
	companies, err := c.GetCompaniesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[int]bool, len(companies))
	for _, company := range companies {
		owned[company.ID] = true
	}

	result := make([]models.Property, 0)
	if len(owned) == 0 {
		return result, nil
	}

	all, err := c.LoadAllProperties(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if owned[p.CompanyID] {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetPropertiesByCompany returns the properties of one company, in merged order.
func (c *Catalog) GetPropertiesByCompany(ctx context.Context, companyID int) ([]models.Property, error) {
	all, err := c.LoadAllProperties(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.Property, 0)
	for _, p := range all {
		if p.CompanyID == companyID {
			result = append(result, p)
		}
	}
	return result, nil
}

// GetPropertyForUser returns a property only if its company is owned by
// userID. Missing and foreign properties are both reported as not found.
func (c *Catalog) GetPropertyForUser(ctx context.Context, userID, propertyID int) (models.Property, error) {
	all, err := c.LoadAllProperties(ctx)
	if err != nil {
		return models.Property{}, err
	}
	p, ok := find(all, propertyID)
	if !ok {
		return models.Property{}, fmt.Errorf("property %d: %w", propertyID, ErrNotFound)
	}
	if _, err := c.GetCompanyForUser(ctx, userID, p.CompanyID); err != nil {
		if isNotFound(err) {
			return models.Property{}, fmt.Errorf("property %d: %w", propertyID, ErrNotFound)
		}
		return models.Property{}, err
	}
	return p, nil
}

// CreateProperty stores a new property with a freshly allocated ID.
func (c *Catalog) CreateProperty(ctx context.Context, property models.Property) (models.Property, error) {
	if err := c.checkCompanyRef(ctx, property.CompanyID); err != nil {
		return models.Property{}, err
	}

	seedProperties := c.seed.Properties()
	var created models.Property

	_, err := c.properties.Update(ctx, func(local []models.Property) ([]models.Property, error) {
		created = property
		created.ID = NextID(Merge(seedProperties, local))
		return append(local, created), nil
	})
	if err != nil {
		return models.Property{}, fmt.Errorf("failed to create property: %w", err)
	}
	return created, nil
}

// SaveProperty replaces an existing property. Editing a seed property stores
// the edited copy in the overlay.
func (c *Catalog) SaveProperty(ctx context.Context, property models.Property) (models.Property, error) {
	if err := c.checkCompanyRef(ctx, property.CompanyID); err != nil {
		return models.Property{}, err
	}

	seedProperties := c.seed.Properties()
	_, err := c.properties.Update(ctx, func(local []models.Property) ([]models.Property, error) {
		if _, ok := find(Merge(seedProperties, local), property.ID); !ok {
			return nil, fmt.Errorf("property %d: %w", property.ID, ErrNotFound)
		}
		return upsert(local, property), nil
	})
	if err != nil {
		return models.Property{}, fmt.Errorf("failed to save property: %w", err)
	}
	return property, nil
}

func (c *Catalog) checkCompanyRef(ctx context.Context, companyID int) error {
	_, err := c.GetCompany(ctx, companyID)
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &DanglingReferenceError{Entity: "property", Field: "companyId", ID: companyID}
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
