package verification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/oracle"
	"github.com/chainpress/paywall/types"
)

const (
	payeeAddr = "SP248QXA1FSS883DNGSZ1A47DP4WF5SEBNST9PXWP"
	payerAddr = "SP3FBR2AGK5H9QBDH3EEN6DF8EK8JY7RX8QJ5SVTE"
	otherAddr = "SP2QZHZB0HH0ZVXTPT6SRY821W2Z6TGZ67F4BHKHY"
	proofA    = "0xab12c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
	proofB    = "0xbb12c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2"
)

func unlockReq() *types.PaymentRequirement {
	return &types.PaymentRequirement{
		Scheme:      types.SchemeExact,
		Amount:      decimal.RequireFromString("0.15"),
		Currency:    types.CurrencySTX,
		Network:     types.NetworkMainnet,
		PayTo:       payeeAddr,
		Description: "Access to premium article: 42",
		MimeType:    "application/json",
	}
}

func testVerifier(t *testing.T) (*Verifier, *oracle.Static, *ledger.Memory) {
	t.Helper()
	ora := oracle.NewStatic()
	led := ledger.NewMemory()
	return NewVerifier(ora, led, time.Second, nil, nil), ora, led
}

func confirmed(amount string) oracle.TxInfo {
	return oracle.TxInfo{
		From:      payerAddr,
		To:        payeeAddr,
		Amount:    decimal.RequireFromString(amount),
		Currency:  types.CurrencySTX,
		Confirmed: true,
	}
}

func TestVerifySettlesConfirmedPayment(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.15"))

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, res.Kind)
	require.NotNil(t, res.Record)
	assert.Equal(t, proofA, res.Record.TxRef)
	assert.Equal(t, types.StatusSettled, res.Record.Status)
	assert.NotEmpty(t, res.Record.ID)
	assert.Equal(t, 1, led.Len())
}

func TestVerifyOverpaymentSettles(t *testing.T) {
	v, ora, _ := testVerifier(t)
	ora.Put(proofA, confirmed("0.20"))

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	assert.Equal(t, ResultSettled, res.Kind)
}

func TestVerifyIdempotentUnlock(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.15"))
	ctx := context.Background()

	first, err := v.Verify(ctx, "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, first.Kind)

	// Resubmitting the same proof, or any proof, for an already settled
	// unlock returns the existing record without touching the oracle.
	second, err := v.Verify(ctx, "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, second.Kind)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 1, led.Len())

	third, err := v.Verify(ctx, "42", payerAddr, proofB, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, third.Kind)
	assert.Equal(t, first.Record.ID, third.Record.ID)
	assert.Equal(t, 1, led.Len())
}

func TestVerifyConcurrentUnlockSettlesOnce(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.15"))

	const n = 16
	var wg sync.WaitGroup
	results := make([]*Result, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ResultSettled, results[i].Kind)
		assert.Equal(t, results[0].Record.ID, results[i].Record.ID)
	}
	assert.Equal(t, 1, led.Len())
}

func TestVerifyUnderpaymentRejected(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.10"))

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "underpayment")
	assert.Equal(t, 0, led.Len())
}

func TestVerifyCurrencyMismatchRejected(t *testing.T) {
	v, ora, _ := testVerifier(t)
	info := confirmed("0.15")
	info.Currency = types.CurrencySBTC
	ora.Put(proofA, info)

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "currency mismatch")
}

func TestVerifyWrongPayeeRejected(t *testing.T) {
	v, ora, _ := testVerifier(t)
	info := confirmed("0.15")
	info.To = otherAddr
	ora.Put(proofA, info)

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "payee")
}

func TestVerifySenderMismatchRejected(t *testing.T) {
	v, ora, _ := testVerifier(t)
	info := confirmed("0.15")
	info.From = otherAddr
	ora.Put(proofA, info)

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "sender")
}

func TestVerifyUnconfirmedIsPending(t *testing.T) {
	v, ora, led := testVerifier(t)
	info := confirmed("0.15")
	info.Confirmed = false
	ora.Put(proofA, info)

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultPending, res.Kind)
	assert.Equal(t, 0, led.Len())

	// Confirmation later turns the same proof into a settlement.
	ora.Put(proofA, confirmed("0.15"))
	res, err = v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	assert.Equal(t, ResultSettled, res.Kind)
}

func TestVerifyUnknownTxIsPending(t *testing.T) {
	v, _, _ := testVerifier(t)

	res, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	assert.Equal(t, ResultPending, res.Kind)
}

func TestVerifyProofSingleUse(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.15"))
	ctx := context.Background()

	res, err := v.Verify(ctx, "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, res.Kind)

	// The same proof cannot unlock a different article.
	res, err = v.Verify(ctx, "43", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "consumed")
	assert.Equal(t, 1, led.Len())
}

func TestVerifyTipsRepeatable(t *testing.T) {
	v, ora, led := testVerifier(t)
	ctx := context.Background()
	tipReq := unlockReq()
	tipReq.Amount = decimal.New(1, -6)

	for i := 0; i < 3; i++ {
		proof := fmt.Sprintf("0x%02d12c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2", i)
		ora.Put(proof, confirmed("0.05"))

		res, err := v.Verify(ctx, "42", payerAddr, proof, tipReq, types.ChargeTip)
		require.NoError(t, err)
		assert.Equal(t, ResultSettled, res.Kind)
	}
	assert.Equal(t, 3, led.Len())
}

func TestVerifyReusedTipProofRejected(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Put(proofA, confirmed("0.05"))
	ctx := context.Background()
	tipReq := unlockReq()
	tipReq.Amount = decimal.New(1, -6)

	res, err := v.Verify(ctx, "42", payerAddr, proofA, tipReq, types.ChargeTip)
	require.NoError(t, err)
	require.Equal(t, ResultSettled, res.Kind)

	res, err = v.Verify(ctx, "42", payerAddr, proofA, tipReq, types.ChargeTip)
	require.NoError(t, err)
	assert.Equal(t, ResultRejected, res.Kind)
	assert.Equal(t, 1, led.Len())
}

func TestVerifyOracleFailure(t *testing.T) {
	v, ora, led := testVerifier(t)
	ora.Fail(proofA, assert.AnError)

	_, err := v.Verify(context.Background(), "42", payerAddr, proofA, unlockReq(), types.ChargeUnlock)
	require.Error(t, err)
	assert.Equal(t, types.ErrOracleUnavailable, types.CodeOf(err))
	assert.Equal(t, 0, led.Len())
}

func TestVerifyMalformedProofRejected(t *testing.T) {
	v, _, _ := testVerifier(t)
	ctx := context.Background()

	for _, proof := range []string{"nothex", "0x1234", "ab12c3"} {
		res, err := v.Verify(ctx, "42", payerAddr, proof, unlockReq(), types.ChargeUnlock)
		require.NoError(t, err, "proof %q", proof)
		assert.Equal(t, ResultRejected, res.Kind, "proof %q", proof)
	}
}

func TestVerifyMissingPayerRejected(t *testing.T) {
	v, ora, _ := testVerifier(t)
	ora.Put(proofA, confirmed("0.15"))

	res, err := v.Verify(context.Background(), "42", "", proofA, unlockReq(), types.ChargeUnlock)
	require.NoError(t, err)
	require.Equal(t, ResultRejected, res.Kind)
	assert.Contains(t, res.Reason, "payer")
}
