package i

import (
	"context"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
)

// CatalogRepo defines the persistence operations of the asset catalog.
type CatalogRepo interface {
	// Latest returns the most recently generated catalog.
	// Returns an error if no catalog was saved yet.
	Latest(ctx context.Context) (*catalog.Catalog, error)

	// Save stores a catalog, replacing one with the same generation time.
	Save(ctx context.Context, c *catalog.Catalog) error
}
