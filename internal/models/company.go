package models

// Company represents a business owned by a user.
type Company struct {
	// ID is the unique identifier for the company.
	ID int `json:"id"`

	// Name is the display name of the company.
	Name string `json:"name"`

	// Phone is the company number. Digits only.
	Phone string `json:"phone"`

	// MailingAddress is where mail for the company is delivered.
	MailingAddress string `json:"mailingAddress"`

	// ReturnAddress is where packages are returned.
	// Equal to MailingAddress when SameAddress is set.
	ReturnAddress string `json:"returnAddress"`

	// SameAddress marks that ReturnAddress mirrors MailingAddress.
	SameAddress bool `json:"sameAddress"`

	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`

	// UserID references the owning User.
	UserID int `json:"userId"`
}

// RecordID implements Record.
func (c Company) RecordID() int { return c.ID }
