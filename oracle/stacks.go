package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/types"
)

// stacksDecimals converts micro-STX amounts reported by the API to whole STX.
const stacksDecimals = 6

// Stacks resolves proofs against a Hiro-style Stacks API node.
type Stacks struct {
	baseURL string
	client  *http.Client
}

// NewStacks creates a Stacks oracle for the given API base URL, e.g.
// "https://api.mainnet.hiro.so".
func NewStacks(baseURL string, timeout time.Duration) *Stacks {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Stacks{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type stacksTxResponse struct {
	TxID          string `json:"tx_id"`
	TxStatus      string `json:"tx_status"`
	TxType        string `json:"tx_type"`
	SenderAddress string `json:"sender_address"`
	TokenTransfer struct {
		RecipientAddress string `json:"recipient_address"`
		Amount           string `json:"amount"`
		Memo             string `json:"memo"`
	} `json:"token_transfer"`
}

// Resolve fetches the transaction named by txRef. Transactions the node has
// not seen, and transactions that aborted, resolve as unconfirmed.
func (s *Stacks) Resolve(ctx context.Context, txRef string) (*TxInfo, error) {
	url := fmt.Sprintf("%s/extended/v1/tx/%s", s.baseURL, txRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, unavailable("failed to build stacks tx request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable("stacks api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &TxInfo{Confirmed: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(
			fmt.Sprintf("stacks api returned status %d", resp.StatusCode),
			fmt.Errorf("GET %s: %s", url, resp.Status),
		)
	}

	var tx stacksTxResponse
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		return nil, unavailable("failed to decode stacks tx response", err)
	}

	info := &TxInfo{
		From:      tx.SenderAddress,
		To:        tx.TokenTransfer.RecipientAddress,
		Currency:  types.CurrencySTX,
		Confirmed: tx.TxStatus == "success",
	}

	if tx.TokenTransfer.Amount != "" {
		micro, err := decimal.NewFromString(tx.TokenTransfer.Amount)
		if err != nil {
			return nil, unavailable("stacks api returned malformed amount", err)
		}
		info.Amount = micro.Shift(-stacksDecimals)
	}

	return info, nil
}
