package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProtocolVersion is the version of the x402-style handshake spoken on the wire.
const ProtocolVersion = 1

// PaymentScheme identifies how a requirement amount is interpreted.
type PaymentScheme string

const (
	// SchemeExact requires a transfer of at least the stated amount.
	SchemeExact PaymentScheme = "exact"
)

// ChargeType distinguishes one-time unlock charges from repeatable tips.
type ChargeType string

const (
	// ChargeUnlock gates access to content. At most one settled unlock
	// record may exist per (content, payer) pair.
	ChargeUnlock ChargeType = "unlock"

	// ChargeTip is a voluntary repeatable payment with no unlock effect.
	ChargeTip ChargeType = "tip"
)

// SettlementStatus is the lifecycle state of a settlement record.
// Only settled records are ever persisted; pending and rejected outcomes
// are reported to the caller and dropped.
type SettlementStatus string

const (
	StatusSettled  SettlementStatus = "settled"
	StatusPending  SettlementStatus = "pending"
	StatusRejected SettlementStatus = "rejected"
)

// PaymentRequirement describes what payment satisfies a request for one
// piece of content. Immutable once issued; derived on demand, never stored.
type PaymentRequirement struct {
	// Scheme of the payment protocol, currently always "exact".
	Scheme PaymentScheme `json:"scheme"`

	// Amount of the payment in whole token units (e.g. "0.15" STX).
	Amount decimal.Decimal `json:"amount"`

	// Currency the payment must be made in.
	Currency Currency `json:"currency"`

	// Network of the blockchain to send payment on.
	Network Network `json:"network"`

	// PayTo is the address the payment must be sent to. It always equals
	// the registered owner address of the content.
	PayTo string `json:"payTo"`

	// Description of the resource being purchased.
	Description string `json:"description,omitempty"`

	// MimeType of the resource response.
	MimeType string `json:"mimeType,omitempty"`
}

// Validate checks that the requirement is internally consistent.
func (r *PaymentRequirement) Validate() error {
	if r.Scheme != SchemeExact {
		return &PaywallError{Code: ErrInvalidAmount, Message: fmt.Sprintf("unsupported payment scheme: %s", r.Scheme)}
	}
	if !r.Amount.IsPositive() {
		return &PaywallError{Code: ErrInvalidAmount, Message: "requirement amount must be positive"}
	}
	if !r.Currency.Valid() {
		return &PaywallError{Code: ErrInvalidCurrency, Message: fmt.Sprintf("unsupported currency: %s", r.Currency)}
	}
	if r.PayTo == "" {
		return &PaywallError{Code: ErrInvalidPayee, Message: "requirement payTo is required"}
	}
	return nil
}

// Challenge is the machine-readable payment instruction carried in the
// Payment-Required header of a 402 response.
type Challenge struct {
	Requirements []PaymentRequirement `json:"requirements"`
	Description  string               `json:"description"`
	MimeType     string               `json:"mimeType"`
}

// Receipt is returned to the client in the Payment-Response header after a
// proof has been verified and settled.
type Receipt struct {
	TxHash   string          `json:"txHash"`
	Status   string          `json:"status"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// ReceiptStatusCompleted is the only status a receipt is ever issued with.
const ReceiptStatusCompleted = "completed"

// SettlementRecord is the durable, append-only record that a proof has been
// confirmed and credited against a piece of content.
type SettlementRecord struct {
	ID         string           `json:"id"`
	ContentID  string           `json:"contentId"`
	Payer      string           `json:"payer"`
	Type       ChargeType       `json:"type"`
	Amount     decimal.Decimal  `json:"amount"`
	Currency   Currency         `json:"currency"`
	TxRef      string           `json:"txRef"`
	VerifiedAt time.Time        `json:"verifiedAt"`
	Status     SettlementStatus `json:"status"`
}

// Receipt derives the wire receipt for this record.
func (r *SettlementRecord) Receipt() *Receipt {
	return &Receipt{
		TxHash:   r.TxRef,
		Status:   ReceiptStatusCompleted,
		Amount:   r.Amount,
		Currency: r.Currency,
	}
}

// Content is an entry in the content catalog. The owner address is the
// authoritative payee for every requirement issued for this content.
type Content struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Excerpt     string          `json:"excerpt,omitempty"`
	Body        string          `json:"content"`
	Price       decimal.Decimal `json:"price"`
	Currency    Currency        `json:"currency"`
	Owner       string          `json:"-"`
	AuthorID    string          `json:"authorId,omitempty"`
	AuthorName  string          `json:"author,omitempty"`
	PublishedAt string          `json:"publishedAt,omitempty"`
	Reads       int64           `json:"reads"`
}

// PaywallError is the error type used across the module.
type PaywallError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *PaywallError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidAmount     = "INVALID_AMOUNT"
	ErrInvalidCurrency   = "INVALID_CURRENCY"
	ErrInvalidPayee      = "INVALID_PAYEE"
	ErrNotFound          = "NOT_FOUND"
	ErrRejected          = "REJECTED"
	ErrPending           = "PENDING"
	ErrDuplicateUnlock   = "DUPLICATE_UNLOCK"
	ErrOracleUnavailable = "ORACLE_UNAVAILABLE"
	ErrConfigError       = "CONFIG_ERROR"
)

// CodeOf extracts the paywall error code from err, or "" when err is not a
// PaywallError.
func CodeOf(err error) string {
	if pe, ok := err.(*PaywallError); ok {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err is a PaywallError carrying the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
