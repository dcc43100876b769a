package oracle

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/chainpress/paywall/types"
)

// evmDecimals converts wei amounts to whole native token units.
const evmDecimals = 18

// EVM resolves proofs against an EVM JSON-RPC endpoint. Only native-token
// transfers are recognized; the configured currency is what the transfer is
// reported as (e.g. wrapped bitcoin on a bitcoin-pegged sidechain).
type EVM struct {
	client   *ethclient.Client
	chainID  *big.Int
	currency types.Currency
}

// NewEVM dials the RPC endpoint and pins the chain id used for sender
// recovery.
func NewEVM(ctx context.Context, rpcURL string, currency types.Currency) (*EVM, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, unavailable("failed to dial evm rpc endpoint", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, unavailable("failed to fetch evm chain id", err)
	}

	return &EVM{client: client, chainID: chainID, currency: currency}, nil
}

// Resolve looks the transaction up by hash. A transaction the node has not
// seen, one still in the mempool, or one whose receipt reports failure all
// resolve as unconfirmed.
func (e *EVM) Resolve(ctx context.Context, txRef string) (*TxInfo, error) {
	hash := common.HexToHash(txRef)

	tx, pending, err := e.client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return &TxInfo{Confirmed: false}, nil
		}
		return nil, unavailable("evm transaction lookup failed", err)
	}

	info := &TxInfo{
		Amount:   decimal.NewFromBigInt(tx.Value(), -evmDecimals),
		Currency: e.currency,
	}
	if to := tx.To(); to != nil {
		info.To = to.Hex()
	}

	from, err := gethtypes.Sender(gethtypes.LatestSignerForChainID(e.chainID), tx)
	if err != nil {
		return nil, unavailable("failed to recover evm sender", err)
	}
	info.From = from.Hex()

	if pending {
		return info, nil
	}

	receipt, err := e.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return info, nil
		}
		return nil, unavailable("evm receipt lookup failed", err)
	}

	info.Confirmed = receipt.Status == gethtypes.ReceiptStatusSuccessful
	return info, nil
}

// Close releases the underlying RPC connection.
func (e *EVM) Close() {
	e.client.Close()
}
