// Package oracle resolves client-supplied payment proofs against a chain.
// The oracle is deliberately dumb: it reports what a transaction did and
// whether it is final. Deciding whether that satisfies a requirement is the
// verifier's job.
package oracle

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/types"
)

// TxInfo is the normalized view of a resolved transaction.
type TxInfo struct {
	From      string
	To        string
	Amount    decimal.Decimal
	Currency  types.Currency
	Confirmed bool
}

// Oracle resolves a proof reference to the transaction it names.
//
// Resolve returns an ORACLE_UNAVAILABLE error only for transport or chain
// endpoint failures. A proof that names no transaction, or one that has not
// reached finality, resolves with Confirmed=false; invalid proofs may stay
// unconfirmed indefinitely.
type Oracle interface {
	Resolve(ctx context.Context, txRef string) (*TxInfo, error)
}

func unavailable(msg string, err error) error {
	return &types.PaywallError{
		Code:    types.ErrOracleUnavailable,
		Message: msg,
		Data:    err.Error(),
	}
}
