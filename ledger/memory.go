package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainpress/paywall/types"
)

// Memory is an in-process Ledger guarded by a single RWMutex. Contention is
// negligible at this scale; a store with a unique index on
// (contentId, payer, type=unlock) is a drop-in replacement.
type Memory struct {
	mu      sync.RWMutex
	records []*types.SettlementRecord
	unlocks map[string]*types.SettlementRecord // unlockKey -> record
	proofs  map[string]*types.SettlementRecord // txRef -> first consuming record
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{
		unlocks: make(map[string]*types.SettlementRecord),
		proofs:  make(map[string]*types.SettlementRecord),
	}
}

func unlockKey(contentID, payer string) string {
	return contentID + "\x00" + payer
}

// Append inserts a record under the write lock. The duplicate check and the
// insert happen under the same critical section, so racing appends for one
// (contentId, payer) unlock key resolve to exactly one stored record.
func (m *Memory) Append(ctx context.Context, rec *types.SettlementRecord) error {
	if rec == nil {
		return &types.PaywallError{Code: types.ErrRejected, Message: "nil settlement record"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.Type == types.ChargeUnlock {
		key := unlockKey(rec.ContentID, rec.Payer)
		if existing, ok := m.unlocks[key]; ok {
			return &types.PaywallError{
				Code:    types.ErrDuplicateUnlock,
				Message: fmt.Sprintf("unlock already settled for content %s and payer %s", rec.ContentID, rec.Payer),
				Data:    existing.ID,
			}
		}
	}

	stored := cloneRecord(rec)
	m.records = append(m.records, stored)
	if stored.Type == types.ChargeUnlock {
		m.unlocks[unlockKey(stored.ContentID, stored.Payer)] = stored
	}
	if _, ok := m.proofs[stored.TxRef]; !ok {
		m.proofs[stored.TxRef] = stored
	}
	return nil
}

// Find returns the record for (contentId, payer, type), if any.
func (m *Memory) Find(ctx context.Context, contentID, payer string, typ types.ChargeType) (*types.SettlementRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if typ == types.ChargeUnlock {
		if rec, ok := m.unlocks[unlockKey(contentID, payer)]; ok {
			return cloneRecord(rec), true, nil
		}
		return nil, false, nil
	}

	for _, rec := range m.records {
		if rec.Type == typ && rec.ContentID == contentID && rec.Payer == payer {
			return cloneRecord(rec), true, nil
		}
	}
	return nil, false, nil
}

// FindByProof returns the record that consumed the given proof reference.
func (m *Memory) FindByProof(ctx context.Context, txRef string) (*types.SettlementRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rec, ok := m.proofs[txRef]; ok {
		return cloneRecord(rec), true, nil
	}
	return nil, false, nil
}

// List returns all records for a payer in append order.
func (m *Memory) List(ctx context.Context, payer string) ([]*types.SettlementRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.SettlementRecord
	for _, rec := range m.records {
		if rec.Payer == payer {
			out = append(out, cloneRecord(rec))
		}
	}
	return out, nil
}

// Len returns the total number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// cloneRecord copies a record so callers can never mutate ledger state.
func cloneRecord(rec *types.SettlementRecord) *types.SettlementRecord {
	c := *rec
	return &c
}
