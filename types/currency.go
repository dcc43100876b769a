package types

// Currency is a token accepted as payment for content.
type Currency string

const (
	// CurrencySTX is the native token of the Stacks chain.
	CurrencySTX Currency = "STX"

	// CurrencySBTC is wrapped bitcoin.
	CurrencySBTC Currency = "sBTC"

	// CurrencyUSDA is the accepted stable token.
	CurrencyUSDA Currency = "USDA"
)

// Valid reports whether c is one of the accepted currencies.
func (c Currency) Valid() bool {
	switch c {
	case CurrencySTX, CurrencySBTC, CurrencyUSDA:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// Network identifies the chain a payment is expected on.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

func (n Network) String() string {
	return string(n)
}

// IsTestnet reports whether n is a test network.
func (n Network) IsTestnet() bool {
	return n == NetworkTestnet
}
