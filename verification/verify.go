// Package verification decides whether a payment proof satisfies a
// requirement, exactly once per unlock, safely under concurrency.
package verification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/logger"
	"github.com/chainpress/paywall/metrics"
	"github.com/chainpress/paywall/oracle"
	"github.com/chainpress/paywall/types"
	"github.com/chainpress/paywall/utils"
)

// ResultKind tags the verification outcome.
type ResultKind string

const (
	ResultSettled  ResultKind = "settled"
	ResultRejected ResultKind = "rejected"
	ResultPending  ResultKind = "pending"
)

// Result is the tagged outcome of a verification call.
//
// Settled carries the settlement record (possibly a pre-existing one when the
// call was idempotently short-circuited). Rejected and Pending carry a
// human-readable reason. A transient oracle failure is not a Result; it is
// returned as an ORACLE_UNAVAILABLE error so callers can tell "this proof is
// bad" from "try again".
type Result struct {
	Kind   ResultKind              `json:"kind"`
	Record *types.SettlementRecord `json:"record,omitempty"`
	Reason string                  `json:"reason,omitempty"`
}

func settled(rec *types.SettlementRecord) *Result {
	return &Result{Kind: ResultSettled, Record: rec}
}

func rejected(reason string) *Result {
	return &Result{Kind: ResultRejected, Reason: reason}
}

func pending(reason string) *Result {
	return &Result{Kind: ResultPending, Reason: reason}
}

// Verifier resolves proofs against the chain oracle and records settlements.
type Verifier struct {
	oracle  oracle.Oracle
	ledger  ledger.Ledger
	timeout time.Duration
	group   singleflight.Group
	log     logger.Logger
	metrics metrics.Recorder
}

// NewVerifier creates a verifier. A nil log or rec falls back to no-ops.
func NewVerifier(o oracle.Oracle, led ledger.Ledger, timeout time.Duration, log logger.Logger, rec metrics.Recorder) *Verifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Verifier{
		oracle:  o,
		ledger:  led,
		timeout: timeout,
		log:     log,
		metrics: rec,
	}
}

// Verify checks whether proof satisfies req for (contentID, payer).
//
// Unlock charges are idempotent: a settled record for the pair short-circuits
// without another oracle call, and racing calls for the same pair collapse to
// a single resolution whose result they all share. Tip charges skip the
// short-circuit; every distinct confirmed tip proof appends a new record.
func (v *Verifier) Verify(
	ctx context.Context,
	contentID, payer, proof string,
	req *types.PaymentRequirement,
	typ types.ChargeType,
) (*Result, error) {
	start := time.Now()
	res, err := v.verify(ctx, contentID, payer, proof, req, typ)

	label := "error"
	if err == nil {
		label = string(res.Kind)
	}
	v.metrics.IncCounter("verify", map[string]string{"result": label})
	v.metrics.ObserveLatency("verify", time.Since(start), map[string]string{"result": label})
	return res, err
}

func (v *Verifier) verify(
	ctx context.Context,
	contentID, payer, proof string,
	req *types.PaymentRequirement,
	typ types.ChargeType,
) (*Result, error) {
	if payer == "" {
		return rejected("payer identity is required"), nil
	}
	if err := utils.ValidateTxRef(proof); err != nil {
		return rejected(fmt.Sprintf("malformed proof: %v", err)), nil
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Idempotent short-circuit: a settled unlock never touches the chain again.
	if typ == types.ChargeUnlock {
		if rec, ok, err := v.ledger.Find(ctx, contentID, payer, types.ChargeUnlock); err != nil {
			return nil, err
		} else if ok {
			v.log.Debug("unlock already settled", map[string]any{
				"contentId": contentID,
				"payer":     payer,
				"record":    rec.ID,
			})
			return settled(rec), nil
		}
	}

	// Collapse racing calls. Unlocks dedupe on the ledger key, tips on the
	// proof itself, so a double-submitted tip does not double-record while
	// distinct tips proceed independently.
	key := flightKey(contentID, payer, proof, typ)
	out, err, _ := v.group.Do(key, func() (interface{}, error) {
		return v.resolveAndSettle(ctx, contentID, payer, proof, req, typ)
	})
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

func flightKey(contentID, payer, proof string, typ types.ChargeType) string {
	if typ == types.ChargeTip {
		return "tip\x00" + proof
	}
	return "unlock\x00" + contentID + "\x00" + payer
}

func (v *Verifier) resolveAndSettle(
	ctx context.Context,
	contentID, payer, proof string,
	req *types.PaymentRequirement,
	typ types.ChargeType,
) (*Result, error) {
	// A proof is single-use: once a record has consumed it, it can settle
	// nothing else.
	if prior, ok, err := v.ledger.FindByProof(ctx, proof); err != nil {
		return nil, err
	} else if ok {
		if typ == types.ChargeUnlock && prior.Type == types.ChargeUnlock &&
			prior.ContentID == contentID && prior.Payer == payer {
			return settled(prior), nil
		}
		return rejected("proof already consumed by another settlement"), nil
	}

	// Once issued, the oracle call runs to completion even if the request
	// context is abandoned; only the verifier's own timeout bounds it.
	octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
	defer cancel()

	info, err := v.oracle.Resolve(octx, proof)
	if err != nil {
		v.log.Warn("oracle resolution failed", map[string]any{
			"proof": proof,
			"error": err.Error(),
		})
		return nil, err
	}

	if !info.Confirmed {
		return pending("transaction is not yet confirmed"), nil
	}
	if info.Currency != req.Currency {
		return rejected(fmt.Sprintf("currency mismatch: paid %s, required %s", info.Currency, req.Currency)), nil
	}
	if info.Amount.LessThan(req.Amount) {
		return rejected(fmt.Sprintf("underpayment: paid %s, required %s", info.Amount, req.Amount)), nil
	}
	if !strings.EqualFold(info.To, req.PayTo) {
		return rejected("payment was not sent to the required payee"), nil
	}
	if !strings.EqualFold(info.From, payer) {
		return rejected("transaction sender does not match payer identity"), nil
	}

	rec := &types.SettlementRecord{
		ID:         uuid.NewString(),
		ContentID:  contentID,
		Payer:      payer,
		Type:       typ,
		Amount:     info.Amount,
		Currency:   info.Currency,
		TxRef:      proof,
		VerifiedAt: time.Now().UTC(),
		Status:     types.StatusSettled,
	}

	if err := v.ledger.Append(ctx, rec); err != nil {
		// Lost the insert race; the existing record is the settlement.
		if types.IsCode(err, types.ErrDuplicateUnlock) {
			existing, ok, ferr := v.ledger.Find(ctx, contentID, payer, types.ChargeUnlock)
			if ferr != nil {
				return nil, ferr
			}
			if ok {
				return settled(existing), nil
			}
		}
		return nil, err
	}

	v.log.Info("payment settled", map[string]any{
		"contentId": contentID,
		"payer":     payer,
		"type":      string(typ),
		"amount":    rec.Amount.String(),
		"txRef":     proof,
	})
	return settled(rec), nil
}
