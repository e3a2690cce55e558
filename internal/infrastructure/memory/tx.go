package memory

import (
	"context"

	"landedcost/internal/core/tx"
)

// TxManager is a pass-through transaction manager. In-memory repositories
// mutate state directly, so there is nothing to commit or roll back; the
// services keep validation ahead of every write instead.
type TxManager struct{}

// NewTxManager creates the manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ tx.Manager = (*TxManager)(nil)
