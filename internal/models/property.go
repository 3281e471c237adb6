package models

import "encoding/json"

// PropertyType is the category of a property.
type PropertyType string

const (
	PropertyTypeKos     PropertyType = "kos"
	PropertyTypeRuko    PropertyType = "ruko"
	PropertyTypeGudang  PropertyType = "gudang"
	PropertyTypeKantor  PropertyType = "kantor"
	PropertyTypeLainnya PropertyType = "lainnya"
)

// PropertyTypes lists the accepted categories in display order.
var PropertyTypes = []PropertyType{
	PropertyTypeKos,
	PropertyTypeRuko,
	PropertyTypeGudang,
	PropertyTypeKantor,
	PropertyTypeLainnya,
}

// Valid reports whether t is one of PropertyTypes.
func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Property represents an asset owned by a company.
type Property struct {
	// ID is the unique identifier for the property.
	ID int `json:"id"`

	// Name is the display name of the property.
	Name string `json:"name"`

	// Type is the property category.
	Type PropertyType `json:"type"`

	// OwnerName is the owner shown for the property. It may be copied from
	// the owning company when the user picks "same as company".
	OwnerName string `json:"ownerName"`

	// Phone and MailingAddress are denormalized from the owning company at
	// write time. They are not kept in sync when the company changes.
	Phone          string `json:"phone,omitempty"`
	MailingAddress string `json:"mailingAddress,omitempty"`

	// ReturnAddress is where packages for the property are returned.
	ReturnAddress string `json:"returnAddress"`

	// SameAddress marks that ReturnAddress mirrors the company's mailing address.
	SameAddress bool `json:"sameAddress"`

	// CompanyID references the owning Company.
	CompanyID int `json:"companyId"`
}

// RecordID implements Record.
func (p Property) RecordID() int { return p.ID }

// FieldAliases maps a current JSON key to the older key that still fills it.
func (Property) FieldAliases() map[string]string {
	return map[string]string{"ownerName": "owner"}
}

// UnmarshalJSON accepts the older "owner" key as an alias for "ownerName".
func (p *Property) UnmarshalJSON(data []byte) error {
	type plain Property
	var aux struct {
		plain
		Owner string `json:"owner"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Property(aux.plain)
	if p.OwnerName == "" {
		p.OwnerName = aux.Owner
	}
	return nil
}
