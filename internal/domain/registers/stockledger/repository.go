// Package stockledger provides the quantity/value movement ledger register.
package stockledger

import (
	"context"
	"time"

	"landedcost/internal/core/entity"
	"landedcost/internal/core/id"
	"landedcost/internal/core/types"
)

// Repository defines the operations this engine needs on the movement ledger.
// The ledger rows themselves are created by the surrounding receipt flow;
// this engine only reads chains and shifts stock values.
type Repository interface {
	// GetEntryByRecorder finds the chain row created by the source receipt
	// for the given (item, warehouse).
	GetEntryByRecorder(ctx context.Context, itemCode, warehouse string, recorderID id.ID) (*entity.StockLedgerEntry, error)

	// ListFrom returns the entry at (period, sequence) and every later entry
	// of the same (item, warehouse) chain, ordered by occurrence then sequence.
	ListFrom(ctx context.Context, itemCode, warehouse string, period time.Time, sequence int64) ([]entity.StockLedgerEntry, error)

	// ShiftStockValue adds delta to the stock value of the given rows.
	// Quantity columns are never written.
	ShiftStockValue(ctx context.Context, lineIDs []id.ID, delta types.Money) error
}

// ChainKey identifies one (item, warehouse) revaluation chain.
type ChainKey struct {
	ItemCode  string
	Warehouse string
}

// ChainLocker serializes revaluations per chain. While one voucher holds a
// chain, no other submission or cancellation may shift the same chain's
// values; contention past the deadline surfaces as ConcurrentRevaluation.
type ChainLocker interface {
	// LockChains acquires exclusive access to every key. The returned
	// release function must be called when the surrounding transaction
	// finishes (implementations tied to the transaction may no-op it).
	LockChains(ctx context.Context, keys []ChainKey) (release func(), err error)
}
