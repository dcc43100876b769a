// Package challenge implements the 402 challenge-response half of the
// handshake: building, encoding and answering payment challenges.
package challenge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/chainpress/paywall/types"
)

// Wire header names of the handshake. Payment-Required carries the encoded
// challenge on a 402 response, Payment-Signature carries the client's proof,
// Payment-Response carries the encoded receipt on success.
const (
	HeaderPaymentRequired  = "Payment-Required"
	HeaderPaymentSignature = "Payment-Signature"
	HeaderPaymentResponse  = "Payment-Response"
	HeaderPayerAddress     = "Payer-Address"
)

// New wraps a single requirement in a Challenge.
func New(req *types.PaymentRequirement, description string) *types.Challenge {
	if description == "" {
		description = "Payment required to access this content"
	}
	return &types.Challenge{
		Requirements: []types.PaymentRequirement{*req},
		Description:  description,
		MimeType:     "application/json",
	}
}

// Encode serializes a challenge to the base64 blob carried in the
// Payment-Required header.
func Encode(c *types.Challenge) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode challenge: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a Payment-Required header blob back into a Challenge.
func Decode(blob string) (*types.Challenge, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("challenge is not valid base64: %w", err)
	}
	var c types.Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("challenge is not valid JSON: %w", err)
	}
	if len(c.Requirements) == 0 {
		return nil, fmt.Errorf("challenge carries no payment requirements")
	}
	return &c, nil
}

// EncodeReceipt serializes a receipt for the Payment-Response header.
func EncodeReceipt(r *types.Receipt) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode receipt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeReceipt parses a Payment-Response header blob.
func DecodeReceipt(blob string) (*types.Receipt, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("receipt is not valid base64: %w", err)
	}
	var r types.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("receipt is not valid JSON: %w", err)
	}
	return &r, nil
}
