package challenge

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/logger"
	"github.com/chainpress/paywall/metrics"
	"github.com/chainpress/paywall/requirement"
	"github.com/chainpress/paywall/types"
	"github.com/chainpress/paywall/verification"
)

// OutcomeKind tags a Respond result.
type OutcomeKind string

const (
	OutcomeGranted   OutcomeKind = "granted"
	OutcomeChallenge OutcomeKind = "challenge"
)

// Outcome is the tagged result of a content access attempt. Granted carries
// the content and, when a proof was just settled, a receipt. Challenge
// carries the encoded blob for the Payment-Required header, plus the reason
// a submitted proof was not accepted, if one was submitted.
type Outcome struct {
	Kind    OutcomeKind
	Content *types.Content
	Receipt *types.Receipt
	Encoded string
	Reason  string
	Pending bool
}

// minTip is the smallest accepted tip, one micro-STX. Any confirmed transfer
// of at least this much to the author counts.
var minTip = decimal.New(1, -6)

// Responder answers content requests: grant, or challenge for payment.
type Responder struct {
	catalog  catalog.Catalog
	ledger   ledger.Ledger
	builder  *requirement.Builder
	verifier *verification.Verifier
	log      logger.Logger
	metrics  metrics.Recorder
}

// NewResponder wires a responder. A nil log or rec falls back to no-ops.
func NewResponder(
	cat catalog.Catalog,
	led ledger.Ledger,
	b *requirement.Builder,
	v *verification.Verifier,
	log logger.Logger,
	rec metrics.Recorder,
) *Responder {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Responder{
		catalog:  cat,
		ledger:   led,
		builder:  b,
		verifier: v,
		log:      log,
		metrics:  rec,
	}
}

// Respond implements the content-access flow. With no proof it grants repeat
// access off the ledger or challenges; with a proof it verifies and either
// grants with a receipt or re-challenges. It never grants on an unresolved
// or ambiguous verification outcome, and a rejected proof is never cached:
// the next proof-less request gets a fresh challenge.
func (r *Responder) Respond(ctx context.Context, contentID, payer, proof string) (*Outcome, error) {
	content, err := r.catalog.Lookup(ctx, contentID)
	if err != nil {
		return nil, err
	}

	if proof == "" {
		if payer != "" {
			rec, ok, err := r.ledger.Find(ctx, contentID, payer, types.ChargeUnlock)
			if err != nil {
				return nil, err
			}
			if ok {
				r.metrics.IncCounter("access", map[string]string{"result": "repeat"})
				return &Outcome{Kind: OutcomeGranted, Content: content, Receipt: rec.Receipt()}, nil
			}
		}
		r.metrics.IncCounter("access", map[string]string{"result": "challenged"})
		return r.challenge(content, "", false)
	}

	req := r.builder.ForContent(content)
	res, err := r.verifier.Verify(ctx, contentID, payer, proof, req, types.ChargeUnlock)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case verification.ResultSettled:
		r.metrics.IncCounter("access", map[string]string{"result": "settled"})
		return &Outcome{Kind: OutcomeGranted, Content: content, Receipt: res.Record.Receipt()}, nil
	case verification.ResultPending:
		r.metrics.IncCounter("access", map[string]string{"result": "pending"})
		return r.challenge(content, res.Reason, true)
	default:
		r.metrics.IncCounter("access", map[string]string{"result": "rejected"})
		r.log.Info("proof rejected", map[string]any{
			"contentId": contentID,
			"payer":     payer,
			"reason":    res.Reason,
		})
		return r.challenge(content, res.Reason, false)
	}
}

// Tip verifies a tip proof for the content's author. Tips are repeatable:
// every distinct confirmed proof appends a new settlement record and unlocks
// nothing.
func (r *Responder) Tip(ctx context.Context, contentID, payer, proof string) (*verification.Result, error) {
	content, err := r.catalog.Lookup(ctx, contentID)
	if err != nil {
		return nil, err
	}

	req := &types.PaymentRequirement{
		Scheme:      types.SchemeExact,
		Amount:      minTip,
		Currency:    content.Currency,
		Network:     r.builder.Network(),
		PayTo:       content.Owner,
		Description: fmt.Sprintf("Tip for article: %s", content.Title),
		MimeType:    "application/json",
	}
	return r.verifier.Verify(ctx, contentID, payer, proof, req, types.ChargeTip)
}

func (r *Responder) challenge(content *types.Content, reason string, pending bool) (*Outcome, error) {
	req := r.builder.ForContent(content)
	enc, err := Encode(New(req, fmt.Sprintf("Payment required to access: %s", content.Title)))
	if err != nil {
		return nil, err
	}
	return &Outcome{Kind: OutcomeChallenge, Encoded: enc, Reason: reason, Pending: pending}, nil
}
