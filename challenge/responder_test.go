package challenge

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/oracle"
	"github.com/chainpress/paywall/requirement"
	"github.com/chainpress/paywall/types"
	"github.com/chainpress/paywall/verification"
)

const (
	testOwner = "SP248QXA1FSS883DNGSZ1A47DP4WF5SEBNST9PXWP"
	testPayer = "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE"
	testProof = "0xab12c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
)

func testResponder(t *testing.T) (*Responder, *oracle.Static, *ledger.Memory) {
	t.Helper()

	cat := catalog.NewMemory(&types.Content{
		ID:       "42",
		Title:    "Test Article",
		Body:     "body",
		Price:    decimal.RequireFromString("0.15"),
		Currency: types.CurrencySTX,
		Owner:    testOwner,
	})
	ora := oracle.NewStatic()
	led := ledger.NewMemory()
	b := requirement.NewBuilder(cat, types.NetworkMainnet)
	v := verification.NewVerifier(ora, led, time.Second, nil, nil)
	return NewResponder(cat, led, b, v, nil, nil), ora, led
}

func confirmedPayment(ora *oracle.Static, txRef, amount string) {
	ora.Put(txRef, oracle.TxInfo{
		From:      testPayer,
		To:        testOwner,
		Amount:    decimal.RequireFromString(amount),
		Currency:  types.CurrencySTX,
		Confirmed: true,
	})
}

func TestRespondWithoutProofChallenges(t *testing.T) {
	r, _, _ := testResponder(t)

	outcome, err := r.Respond(context.Background(), "42", testPayer, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeChallenge, outcome.Kind)
	assert.Empty(t, outcome.Reason)

	ch, err := Decode(outcome.Encoded)
	require.NoError(t, err)
	require.Len(t, ch.Requirements, 1)
	assert.Equal(t, "0.15", ch.Requirements[0].Amount.String())
	assert.Equal(t, testOwner, ch.Requirements[0].PayTo)
}

func TestRespondGrantsWithValidProof(t *testing.T) {
	r, ora, led := testResponder(t)
	confirmedPayment(ora, testProof, "0.15")

	outcome, err := r.Respond(context.Background(), "42", testPayer, testProof)
	require.NoError(t, err)
	require.Equal(t, OutcomeGranted, outcome.Kind)
	require.NotNil(t, outcome.Receipt)
	assert.Equal(t, testProof, outcome.Receipt.TxHash)
	assert.Equal(t, "completed", outcome.Receipt.Status)
	assert.Equal(t, "Test Article", outcome.Content.Title)
	assert.Equal(t, 1, led.Len())
}

func TestRespondRepeatAccessWithoutProof(t *testing.T) {
	r, ora, _ := testResponder(t)
	confirmedPayment(ora, testProof, "0.15")

	_, err := r.Respond(context.Background(), "42", testPayer, testProof)
	require.NoError(t, err)

	outcome, err := r.Respond(context.Background(), "42", testPayer, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome.Kind)
	require.NotNil(t, outcome.Receipt)
	assert.Equal(t, testProof, outcome.Receipt.TxHash)
}

func TestRespondRejectedProofRechallenges(t *testing.T) {
	r, ora, led := testResponder(t)
	confirmedPayment(ora, testProof, "0.10") // underpays the 0.15 price

	outcome, err := r.Respond(context.Background(), "42", testPayer, testProof)
	require.NoError(t, err)
	require.Equal(t, OutcomeChallenge, outcome.Kind)
	assert.Contains(t, outcome.Reason, "underpayment")
	assert.False(t, outcome.Pending)
	assert.Equal(t, 0, led.Len())

	// A rejection is never cached: the next proof-less request gets a
	// fresh challenge, not a replay of the rejection.
	outcome, err = r.Respond(context.Background(), "42", testPayer, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeChallenge, outcome.Kind)
	assert.Empty(t, outcome.Reason)
}

func TestRespondPendingProof(t *testing.T) {
	r, ora, led := testResponder(t)
	ora.Put(testProof, oracle.TxInfo{
		From:     testPayer,
		To:       testOwner,
		Amount:   decimal.RequireFromString("0.15"),
		Currency: types.CurrencySTX,
	})

	outcome, err := r.Respond(context.Background(), "42", testPayer, testProof)
	require.NoError(t, err)
	require.Equal(t, OutcomeChallenge, outcome.Kind)
	assert.True(t, outcome.Pending)
	assert.Equal(t, 0, led.Len())
}

func TestRespondUnknownContent(t *testing.T) {
	r, _, _ := testResponder(t)

	_, err := r.Respond(context.Background(), "missing", testPayer, "")
	require.Error(t, err)
	assert.Equal(t, types.ErrNotFound, types.CodeOf(err))
}

func TestRespondOracleFailurePropagates(t *testing.T) {
	r, ora, _ := testResponder(t)
	ora.Fail(testProof, assert.AnError)

	_, err := r.Respond(context.Background(), "42", testPayer, testProof)
	require.Error(t, err)
	assert.Equal(t, types.ErrOracleUnavailable, types.CodeOf(err))
}

func TestTipAppendsRecords(t *testing.T) {
	r, ora, led := testResponder(t)

	proofs := []string{
		"0x1112c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2",
		"0x2212c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2",
	}
	for _, proof := range proofs {
		confirmedPayment(ora, proof, "1.00")
	}

	for _, proof := range proofs {
		res, err := r.Tip(context.Background(), "42", testPayer, proof)
		require.NoError(t, err)
		assert.Equal(t, verification.ResultSettled, res.Kind)
	}
	assert.Equal(t, 2, led.Len())

	// Tips never unlock.
	outcome, err := r.Respond(context.Background(), "42", testPayer, "")
	require.NoError(t, err)
	assert.Equal(t, OutcomeChallenge, outcome.Kind)
}
