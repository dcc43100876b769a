// Package requirement builds canonical payment-requirement descriptors.
package requirement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/types"
)

// Builder derives PaymentRequirements from catalog entries. Building has no
// side effects and is deterministic for identical inputs, description text
// aside.
type Builder struct {
	catalog catalog.Catalog
	network types.Network
}

// NewBuilder creates a Builder issuing requirements for the given network.
func NewBuilder(cat catalog.Catalog, network types.Network) *Builder {
	if network == "" {
		network = types.NetworkMainnet
	}
	return &Builder{catalog: cat, network: network}
}

// Network returns the network requirements are issued for.
func (b *Builder) Network() types.Network {
	return b.network
}

// Build produces the requirement that would satisfy a purchase of the given
// content at the claimed price. The payee must match the content's registered
// owner; a requirement redirecting funds anywhere else is refused.
func (b *Builder) Build(
	ctx context.Context,
	contentID string,
	price decimal.Decimal,
	currency types.Currency,
	payTo string,
	description string,
) (*types.PaymentRequirement, error) {
	if !price.IsPositive() {
		return nil, &types.PaywallError{
			Code:    types.ErrInvalidAmount,
			Message: fmt.Sprintf("price must be positive, got %s", price),
		}
	}
	if !currency.Valid() {
		return nil, &types.PaywallError{
			Code:    types.ErrInvalidCurrency,
			Message: fmt.Sprintf("unsupported currency: %s", currency),
		}
	}

	content, err := b.catalog.Lookup(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if payTo != content.Owner {
		return nil, &types.PaywallError{
			Code:    types.ErrInvalidPayee,
			Message: fmt.Sprintf("payee does not match the registered owner of content %s", contentID),
		}
	}

	if description == "" {
		description = fmt.Sprintf("Access to premium article: %s", content.Title)
	}

	return &types.PaymentRequirement{
		Scheme:      types.SchemeExact,
		Amount:      price,
		Currency:    currency,
		Network:     b.network,
		PayTo:       payTo,
		Description: description,
		MimeType:    "application/json",
	}, nil
}

// ForContent builds the authoritative requirement for a catalog entry using
// its own registered price, currency and owner. This is the path the
// challenge responder uses, so client-claimed values never leak into a
// challenge.
func (b *Builder) ForContent(content *types.Content) *types.PaymentRequirement {
	return &types.PaymentRequirement{
		Scheme:      types.SchemeExact,
		Amount:      content.Price,
		Currency:    content.Currency,
		Network:     b.network,
		PayTo:       content.Owner,
		Description: fmt.Sprintf("Access to premium article: %s", content.Title),
		MimeType:    "application/json",
	}
}
