package models

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID int `json:"id"`

	// Username is the display and login name.
	// Login by username compares case-insensitively.
	Username string `json:"username"`

	// Email is the user's email address (unique, case-insensitive).
	Email string `json:"email"`

	// Password is stored and compared in plain text.
	Password string `json:"password,omitempty"`

	// HasOnboarded is false at registration and flips to true once the
	// onboarding steps complete. It never flips back.
	HasOnboarded bool `json:"hasOnboarded"`
}

// RecordID implements Record.
func (u User) RecordID() int { return u.ID }

// Public returns a copy without the password, for responses and logs.
func (u User) Public() User {
	u.Password = ""
	return u
}
