// Package catalog is the reconciliation layer: it merges the bundled seed
// records with the local overlay, scopes them by ownership
// (user -> company -> property), and performs every write.
//
// Reads always see seed ∪ overlay with the overlay winning on ID collision.
// Writes touch only the overlay, allocate IDs over the merged set, and check
// that foreign keys resolve.
package catalog

import (
	"github.com/mmynk/taxava/internal/models"
	"github.com/mmynk/taxava/internal/overlay"
	"github.com/mmynk/taxava/internal/seed"
	"github.com/mmynk/taxava/internal/storage"
)

// Catalog reconciles seed and overlay records for all entity types.
type Catalog struct {
	seed       *seed.Store
	users      *overlay.Collection[models.User]
	companies  *overlay.Collection[models.Company]
	properties *overlay.Collection[models.Property]
}

// New creates a catalog over the given seed records and overlay store.
func New(seedStore *seed.Store, store storage.Store, opts ...overlay.Option) *Catalog {
	return &Catalog{
		seed:       seedStore,
		users:      overlay.NewCollection[models.User](store, storage.KeyUsers, opts...),
		companies:  overlay.NewCollection[models.Company](store, storage.KeyCompanies, opts...),
		properties: overlay.NewCollection[models.Property](store, storage.KeyProperties, opts...),
	}
}
