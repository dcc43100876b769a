// Package catalog is the content catalog consumed by the payment core. The
// catalog is the authoritative source for prices and owner (payee) addresses.
package catalog

import (
	"context"

	"github.com/chainpress/paywall/types"
)

// Catalog looks up purchasable content.
type Catalog interface {
	// Lookup returns the content for the given id, or a NOT_FOUND error.
	Lookup(ctx context.Context, contentID string) (*types.Content, error)
}

// Counter is implemented by catalogs that track read counts. The HTTP layer
// bumps the counter when access is granted; implementations without counters
// simply don't implement it.
type Counter interface {
	BumpReads(ctx context.Context, contentID string) error
}
