// Package seed provides the bundled read-only fixture records that stand in
// for a backend dataset.
package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/mmynk/taxava/internal/models"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Fixture file names, relative to the root of the fixture filesystem.
const (
	UsersFile      = "users.json"
	CompaniesFile  = "companies.json"
	PropertiesFile = "properties.json"
)

// Store holds the seed records. It is never mutated after Load returns;
// every accessor hands out a fresh copy.
type Store struct {
	users      []models.User
	companies  []models.Company
	properties []models.Property
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded fixtures.
// The fixtures are parsed once per process.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(fixtures, "fixtures")
		if err != nil {
			defaultErr = fmt.Errorf("failed to open embedded fixtures: %w", err)
			return
		}
		defaultStore, defaultErr = Load(sub)
	})
	return defaultStore, defaultErr
}

// Load reads the three fixture files from fsys. A missing file yields an
// empty collection; a malformed one is an error, since fixtures ship with
// the binary and a bad one is a build defect.
func Load(fsys fs.FS) (*Store, error) {
	s := &Store{}
	if err := readFixture(fsys, UsersFile, &s.users); err != nil {
		return nil, err
	}
	if err := readFixture(fsys, CompaniesFile, &s.companies); err != nil {
		return nil, err
	}
	if err := readFixture(fsys, PropertiesFile, &s.properties); err != nil {
		return nil, err
	}
	return s, nil
}

// New builds a store from in-memory records. Used by tests and tools.
func New(users []models.User, companies []models.Company, properties []models.Property) *Store {
	return &Store{
		users:      clone(users),
		companies:  clone(companies),
		properties: clone(properties),
	}
}

// Users returns the seed users.
func (s *Store) Users() []models.User { return clone(s.users) }

// Companies returns the seed companies.
func (s *Store) Companies() []models.Company { return clone(s.companies) }

// Properties returns the seed properties.
func (s *Store) Properties() []models.Property { return clone(s.properties) }

func readFixture[T models.Record](fsys fs.FS, name string, dst *[]T) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			*dst = nil
			return nil
		}
		return fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	seen := make(map[int]bool, len(*dst))
	for _, r := range *dst {
		id := r.RecordID()
		if id <= 0 {
			return fmt.Errorf("fixture %s: invalid id %d", name, id)
		}
		if seen[id] {
			return fmt.Errorf("fixture %s: duplicate id %d", name, id)
		}
		seen[id] = true
	}
	return nil
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
