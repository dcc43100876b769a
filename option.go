package paywall

import (
	"time"

	"github.com/chainpress/paywall/ledger"
	"github.com/chainpress/paywall/logger"
	"github.com/chainpress/paywall/metrics"
	"github.com/chainpress/paywall/types"
)

type Option func(*Paywall)

func WithLogger(l logger.Logger) Option {
	return func(p *Paywall) {
		p.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *Paywall) {
		p.metrics = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(p *Paywall) {
		p.timeout = t
	}
}

func WithLedger(l ledger.Ledger) Option {
	return func(p *Paywall) {
		p.ledger = l
	}
}

func WithNetwork(n types.Network) Option {
	return func(p *Paywall) {
		p.network = n
	}
}
