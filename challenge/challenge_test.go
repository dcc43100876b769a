package challenge

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpress/paywall/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := &types.PaymentRequirement{
		Scheme:      types.SchemeExact,
		Amount:      decimal.RequireFromString("0.15"),
		Currency:    types.CurrencySTX,
		Network:     types.NetworkMainnet,
		PayTo:       "SP248QXA1FSS883DNGSZ1A47DP4WF5SEBNST9PXWP",
		Description: "Access to premium article: 42",
		MimeType:    "application/json",
	}

	blob, err := Encode(New(req, "Payment required to access: 42"))
	require.NoError(t, err)

	decoded, err := Decode(blob)
	require.NoError(t, err)

	require.Len(t, decoded.Requirements, 1)
	got := decoded.Requirements[0]
	assert.Equal(t, types.SchemeExact, got.Scheme)
	assert.Equal(t, "0.15", got.Amount.String())
	assert.Equal(t, "SP248QXA1FSS883DNGSZ1A47DP4WF5SEBNST9PXWP", got.PayTo)
	assert.Equal(t, types.CurrencySTX, got.Currency)
	assert.Equal(t, "Payment required to access: 42", decoded.Description)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not base64!!")
	assert.Error(t, err)

	_, err = Decode("bm90IGpzb24=") // "not json"
	assert.Error(t, err)

	// Valid JSON but an empty requirement list is not a challenge.
	_, err = Decode("eyJyZXF1aXJlbWVudHMiOltdfQ==") // {"requirements":[]}
	assert.Error(t, err)
}

func TestEncodeDecodeReceipt(t *testing.T) {
	receipt := &types.Receipt{
		TxHash:   "0xab12c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d2e3f4a5b6c7d8e9f0a1b2",
		Status:   types.ReceiptStatusCompleted,
		Amount:   decimal.RequireFromString("0.15"),
		Currency: types.CurrencySTX,
	}

	blob, err := EncodeReceipt(receipt)
	require.NoError(t, err)

	decoded, err := DecodeReceipt(blob)
	require.NoError(t, err)
	assert.Equal(t, receipt.TxHash, decoded.TxHash)
	assert.Equal(t, "completed", decoded.Status)
	assert.True(t, decoded.Amount.Equal(receipt.Amount))
}
