package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/challenge"
	"github.com/chainpress/paywall/types"
	"github.com/chainpress/paywall/utils"
	"github.com/chainpress/paywall/verification"
)

var validate = validator.New()

type accessResponse struct {
	Success bool           `json:"success"`
	Article *types.Content `json:"article"`
	Payment *types.Receipt `json:"payment,omitempty"`
}

type challengeResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Pending bool   `json:"pending,omitempty"`
}

type requirementsRequest struct {
	Price     string `json:"price" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Currency  string `json:"currency"`
}

// handleAccess is the authoritative unlock path. Without a proof it either
// grants repeat access or answers 402 with a Payment-Required header; with a
// proof it verifies and grants with a Payment-Response receipt header.
func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	contentID := mux.Vars(r)["articleID"]
	payer := r.Header.Get(challenge.HeaderPayerAddress)
	proof := r.Header.Get(challenge.HeaderPaymentSignature)

	if payer != "" {
		if err := utils.ValidatePayerAddress(payer); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	outcome, err := s.pw.Access(r.Context(), contentID, payer, proof)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if outcome.Kind == challenge.OutcomeChallenge {
		w.Header().Set(challenge.HeaderPaymentRequired, outcome.Encoded)
		writeJSON(w, http.StatusPaymentRequired, challengeResponse{
			Error:   "Payment required",
			Reason:  outcome.Reason,
			Pending: outcome.Pending,
		})
		return
	}

	if counter, ok := s.pw.Catalog().(catalog.Counter); ok {
		if err := counter.BumpReads(r.Context(), contentID); err == nil {
			outcome.Content.Reads++
		}
	}

	if outcome.Receipt != nil {
		if enc, err := challenge.EncodeReceipt(outcome.Receipt); err == nil {
			w.Header().Set(challenge.HeaderPaymentResponse, enc)
		}
	}
	writeJSON(w, http.StatusOK, accessResponse{
		Success: true,
		Article: outcome.Content,
		Payment: outcome.Receipt,
	})
}

// handleRequirements builds a requirement for a claimed price and recipient,
// rejecting recipients that do not match the registered author.
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	contentID := mux.Vars(r)["articleID"]

	var body requirementsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	price, err := utils.ValidateAmount(body.Price)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currency := types.Currency(body.Currency)
	if body.Currency == "" {
		currency = types.CurrencySTX
	}

	req, err := s.pw.BuildRequirement(r.Context(), contentID, *price, currency, body.Recipient, "")
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, types.Challenge{
		Requirements: []types.PaymentRequirement{*req},
		Description:  req.Description,
		MimeType:     "application/json",
	})
}

// handleTip verifies a repeatable tip proof for the article's author.
func (s *Server) handleTip(w http.ResponseWriter, r *http.Request) {
	contentID := mux.Vars(r)["articleID"]
	payer := r.Header.Get(challenge.HeaderPayerAddress)
	proof := r.Header.Get(challenge.HeaderPaymentSignature)

	if payer == "" || proof == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Payer-Address and Payment-Signature headers are required",
		})
		return
	}

	res, err := s.pw.Tip(r.Context(), contentID, payer, proof)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch res.Kind {
	case verification.ResultSettled:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"payment": res.Record.Receipt(),
		})
	case verification.ResultPending:
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"status": "pending",
			"reason": res.Reason,
		})
	default:
		writeJSON(w, http.StatusPaymentRequired, map[string]string{
			"error": res.Reason,
		})
	}
}

// handleVerifyProof is the read-only convenience oracle query. It never
// unlocks anything.
func (s *Server) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	txRef := mux.Vars(r)["txHash"]

	if err := utils.ValidateTxRef(txRef); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	info, err := s.pw.ResolveProof(r.Context(), txRef)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verified":  info.Confirmed,
		"txHash":    txRef,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleHistory lists a payer's settlement records.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	payer := mux.Vars(r)["payer"]

	if err := utils.ValidatePayerAddress(payer); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	payments, err := s.pw.History(r.Context(), payer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if payments == nil {
		payments = []*types.SettlementRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payer":    payer,
		"payments": payments,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := types.CodeOf(err)
	status := http.StatusInternalServerError

	switch code {
	case types.ErrNotFound:
		status = http.StatusNotFound
	case types.ErrInvalidAmount, types.ErrInvalidCurrency, types.ErrInvalidPayee:
		status = http.StatusBadRequest
	case types.ErrOracleUnavailable:
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", map[string]any{"error": err.Error()})
	}

	writeJSON(w, status, map[string]string{"error": err.Error(), "code": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
