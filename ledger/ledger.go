// Package ledger holds the append-only settlement ledger. The ledger is the
// single serialization point of the payment core: its insert is atomic and
// unique on (contentId, payer) for unlock charges, which is what keeps
// verification idempotent under concurrent calls.
package ledger

import (
	"context"

	"github.com/chainpress/paywall/types"
)

// Ledger records verified payments. Implementations must make Append an
// atomic insert-if-absent for unlock charges and keep all reads
// snapshot-consistent with the most recent completed Append.
type Ledger interface {
	// Append inserts a settled record. It fails with a DUPLICATE_UNLOCK
	// error if an unlock record already exists for (contentId, payer).
	// Tip records never conflict.
	Append(ctx context.Context, rec *types.SettlementRecord) error

	// Find returns the record for (contentId, payer, type), if any.
	// For tip charges it returns the earliest matching record.
	Find(ctx context.Context, contentID, payer string, typ types.ChargeType) (*types.SettlementRecord, bool, error)

	// FindByProof returns the record that consumed the given proof
	// reference, if any.
	FindByProof(ctx context.Context, txRef string) (*types.SettlementRecord, bool, error)

	// List returns all records for a payer in append order.
	List(ctx context.Context, payer string) ([]*types.SettlementRecord, error)
}
