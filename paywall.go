// Package paywall implements the x402-style payment-required handshake for
// paid content: requirement building, 402 challenges, proof verification
// against a chain oracle, and an append-only settlement ledger.
package paywall

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/challenge"
	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/logger"
	"github.com/chainpress/paywall/metrics"
	"github.com/chainpress/paywall/oracle"
	"github.com/chainpress/paywall/requirement"
	"github.com/chainpress/paywall/types"
	"github.com/chainpress/paywall/verification"
)

// Paywall is the main struct wiring the payment core together.
type Paywall struct {
	catalog   catalog.Catalog
	oracle    oracle.Oracle
	ledger    ledger.Ledger
	builder   *requirement.Builder
	verifier  *verification.Verifier
	responder *challenge.Responder

	logger  logger.Logger
	metrics metrics.Recorder
	timeout time.Duration
	network types.Network
}

// New creates a Paywall over the given catalog and chain oracle. The ledger
// defaults to an in-memory one; use WithLedger to supply another.
func New(cat catalog.Catalog, ora oracle.Oracle, opts ...Option) *Paywall {
	p := &Paywall{
		catalog: cat,
		oracle:  ora,
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: 30 * time.Second,
		network: types.NetworkMainnet,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ledger == nil {
		p.ledger = ledger.NewMemory()
	}

	p.builder = requirement.NewBuilder(p.catalog, p.network)
	p.verifier = verification.NewVerifier(p.oracle, p.ledger, p.timeout, p.logger, p.metrics)
	p.responder = challenge.NewResponder(p.catalog, p.ledger, p.builder, p.verifier, p.logger, p.metrics)
	return p
}

// Access runs the content-access flow: grant repeat access, verify a
// submitted proof, or challenge for payment.
func (p *Paywall) Access(ctx context.Context, contentID, payer, proof string) (*challenge.Outcome, error) {
	return p.responder.Respond(ctx, contentID, payer, proof)
}

// Tip verifies a repeatable tip proof for the content's author.
func (p *Paywall) Tip(ctx context.Context, contentID, payer, proof string) (*verification.Result, error) {
	return p.responder.Tip(ctx, contentID, payer, proof)
}

// BuildRequirement builds the requirement for a claimed price and recipient,
// validating the recipient against the content's registered owner.
func (p *Paywall) BuildRequirement(
	ctx context.Context,
	contentID string,
	price decimal.Decimal,
	currency types.Currency,
	payTo string,
	description string,
) (*types.PaymentRequirement, error) {
	return p.builder.Build(ctx, contentID, price, currency, payTo, description)
}

// ResolveProof queries the chain oracle for a transaction reference. This is
// a convenience lookup; the authoritative unlock path is Access.
func (p *Paywall) ResolveProof(ctx context.Context, txRef string) (*oracle.TxInfo, error) {
	return p.oracle.Resolve(ctx, txRef)
}

// History lists the settlement records for a payer in append order.
func (p *Paywall) History(ctx context.Context, payer string) ([]*types.SettlementRecord, error) {
	return p.ledger.List(ctx, payer)
}

// Ledger exposes the settlement ledger.
func (p *Paywall) Ledger() ledger.Ledger {
	return p.ledger
}

// Catalog exposes the content catalog.
func (p *Paywall) Catalog() catalog.Catalog {
	return p.catalog
}

// Version information
const (
	Version = "1.0.0"
)

// GetVersion returns version information.
func GetVersion() map[string]interface{} {
	return map[string]interface{}{
		"library_version":  Version,
		"protocol_version": types.ProtocolVersion,
		"supported_networks": []string{
			string(types.NetworkMainnet), string(types.NetworkTestnet),
		},
		"supported_schemes": []string{
			string(types.SchemeExact),
		},
		"supported_currencies": []string{
			string(types.CurrencySTX), string(types.CurrencySBTC), string(types.CurrencyUSDA),
		},
	}
}
