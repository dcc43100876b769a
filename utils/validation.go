package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateAmount checks that an amount string is a valid, non-negative decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ValidateTxRef validates a transaction reference. Both Stacks and EVM
// transaction ids are 0x-prefixed 32-byte hashes.
func ValidateTxRef(txRef string) error {
	if txRef == "" {
		return fmt.Errorf("transaction reference cannot be empty")
	}
	if !strings.HasPrefix(txRef, "0x") {
		return fmt.Errorf("transaction reference must start with 0x")
	}
	if len(txRef) != 66 {
		return fmt.Errorf("transaction reference must be 66 characters long")
	}
	if !isHexString(txRef[2:]) {
		return fmt.Errorf("transaction reference must be valid hex")
	}
	return nil
}

// ValidatePayerAddress validates a payer identity as either a Stacks
// principal or an EVM address.
func ValidatePayerAddress(address string) error {
	if address == "" {
		return fmt.Errorf("payer address cannot be empty")
	}

	switch {
	case strings.HasPrefix(address, "0x"):
		if len(address) != 42 {
			return fmt.Errorf("EVM address must be 42 characters long")
		}
		if !isHexString(address[2:]) {
			return fmt.Errorf("EVM address must be valid hex")
		}

	case strings.HasPrefix(address, "SP"), strings.HasPrefix(address, "SM"),
		strings.HasPrefix(address, "ST"), strings.HasPrefix(address, "SN"):
		if len(address) < 38 || len(address) > 42 {
			return fmt.Errorf("Stacks address has invalid length")
		}
		if !isC32String(address[2:]) {
			return fmt.Errorf("Stacks address must be valid c32")
		}

	default:
		return fmt.Errorf("unrecognized address format")
	}

	return nil
}

func isHexString(s string) bool {
	match, _ := regexp.MatchString("^[0-9a-fA-F]+$", s)
	return match
}

// c32 alphabet: 0-9 and A-Z excluding I, L, O, U.
func isC32String(s string) bool {
	match, _ := regexp.MatchString("^[0-9ABCDEFGHJKMNPQRSTVWXYZ]+$", s)
	return match
}
