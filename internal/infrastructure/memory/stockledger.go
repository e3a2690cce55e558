package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
	"landedcost/internal/domain/registers/stockledger"
)

// StockLedgerRepository is an in-memory movement ledger.
type StockLedgerRepository struct {
	mu      sync.RWMutex
	entries []entity.StockLedgerEntry
}

// NewStockLedgerRepository creates the repository.
func NewStockLedgerRepository() *StockLedgerRepository {
	return &StockLedgerRepository{}
}

// Append seeds a ledger row. Rows are created by the surrounding receipt
// flow; the engine itself never appends here.
func (r *StockLedgerRepository) Append(entry entity.StockLedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *StockLedgerRepository) GetEntryByRecorder(_ context.Context, itemCode, warehouse string, recorderID id.ID) (*entity.StockLedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		e := r.entries[i]
		if e.ItemCode == itemCode && e.Warehouse == warehouse && e.RecorderID == recorderID {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *StockLedgerRepository) ListFrom(_ context.Context, itemCode, warehouse string, period time.Time, sequence int64) ([]entity.StockLedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := make([]entity.StockLedgerEntry, 0)
	for _, e := range r.entries {
		if e.ItemCode != itemCode || e.Warehouse != warehouse {
			continue
		}
		if e.Period.Before(period) || (e.Period.Equal(period) && e.Sequence < sequence) {
			continue
		}
		chain = append(chain, e)
	}

	sort.Slice(chain, func(i, j int) bool {
		return chain[i].Before(&chain[j])
	})

	return chain, nil
}

func (r *StockLedgerRepository) ShiftStockValue(_ context.Context, lineIDs []id.ID, delta types.Money) error {
	targets := make(map[id.ID]struct{}, len(lineIDs))
	for _, lineID := range lineIDs {
		targets[lineID] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if _, ok := targets[r.entries[i].LineID]; ok {
			r.entries[i].StockValue = r.entries[i].StockValue.Add(delta)
		}
	}
	return nil
}

// Entries returns a snapshot of all rows.
func (r *StockLedgerRepository) Entries() []entity.StockLedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.StockLedgerEntry(nil), r.entries...)
}

var _ stockledger.Repository = (*StockLedgerRepository)(nil)
