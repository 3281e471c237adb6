// Package models defines the core domain records for TAXAVA.
//
// # Records
//
//   - User: an account that logs in and owns companies
//   - Company: a business owned by exactly one user
//   - Property: an asset owned by exactly one company
//
// Ownership is a chain: a property belongs to a user through its company.
//
// # Identifiers
//
// Every record carries an integer ID. IDs share one space across the bundled
// seed fixtures and the local overlay, so a record stored locally with the
// same ID as a seed record replaces it.
//
// # JSON shape
//
// Records are persisted as JSON with camelCase keys. The shape must stay
// compatible with the seed fixtures, so field renames need a matching
// fixture change.
package models

// Record is implemented by every persisted domain record.
type Record interface {
	RecordID() int
}
