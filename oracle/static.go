package oracle

import (
	"context"
	"sync"
)

// Static is a fixture oracle backed by a map. It serves the tests and the
// demo deployment, where no chain endpoint is reachable.
type Static struct {
	mu   sync.RWMutex
	txs  map[string]TxInfo
	errs map[string]error
}

// NewStatic creates an empty fixture oracle.
func NewStatic() *Static {
	return &Static{
		txs:  make(map[string]TxInfo),
		errs: make(map[string]error),
	}
}

// Put registers the transaction a proof reference resolves to.
func (s *Static) Put(txRef string, info TxInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs[txRef] = info
}

// Fail makes Resolve return err for the given proof reference, simulating an
// unreachable chain endpoint.
func (s *Static) Fail(txRef string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[txRef] = err
}

// Resolve returns the registered transaction. Unknown references resolve as
// unconfirmed, matching a chain that has never seen the transaction.
func (s *Static) Resolve(ctx context.Context, txRef string) (*TxInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.errs[txRef]; ok {
		return nil, unavailable("oracle fixture failure", err)
	}
	if info, ok := s.txs[txRef]; ok {
		clone := info
		return &clone, nil
	}
	return &TxInfo{Confirmed: false}, nil
}
