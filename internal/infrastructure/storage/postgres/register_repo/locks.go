package register_repo

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgconn"

	"landedcost/internal/core/apperror"
	"landedcost/internal/domain/registers/stockledger"
	"landedcost/internal/infrastructure/storage/postgres"
)

// lock_timeout error code surfaced by PostgreSQL when an advisory lock wait
// exceeds the session limit.
const pgLockNotAvailable = "55P03"

// ChainLocker serializes revaluation chains with transaction-scoped advisory
// locks. Locks release automatically at commit or rollback, so the returned
// release function is a no-op; callers must hold an open transaction.
type ChainLocker struct {
	txManager *postgres.TxManager

	// LockTimeout caps the wait per acquisition, e.g. "3s".
	lockTimeout string
}

// NewChainLocker creates an advisory-lock based chain locker.
func NewChainLocker(txManager *postgres.TxManager, lockTimeout string) *ChainLocker {
	if lockTimeout == "" {
		lockTimeout = "3s"
	}
	return &ChainLocker{
		txManager:   txManager,
		lockTimeout: lockTimeout,
	}
}

func (l *ChainLocker) LockChains(ctx context.Context, keys []stockledger.ChainKey) (func(), error) {
	tx := l.txManager.GetTx(ctx)
	if tx == nil {
		return nil, apperror.NewInternal(nil).
			WithDetail("reason", "chain locks require transaction context")
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%s'", l.lockTimeout)); err != nil {
		return nil, fmt.Errorf("set lock_timeout: %w", err)
	}

	// Callers pass sorted keys, so concurrent submissions acquire in the
	// same order and cannot deadlock each other.
	for _, key := range keys {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", chainLockID(key)); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
				return nil, apperror.NewConcurrentRevaluation(key.ItemCode, key.Warehouse)
			}
			return nil, fmt.Errorf("lock chain %s/%s: %w", key.ItemCode, key.Warehouse, err)
		}
	}

	return func() {}, nil
}

// chainLockID hashes a chain key into the advisory lock keyspace.
func chainLockID(key stockledger.ChainKey) int64 {
	h := fnv.New64a()
	h.Write([]byte(key.ItemCode))
	h.Write([]byte{0})
	h.Write([]byte(key.Warehouse))
	return int64(h.Sum64())
}

// Ensure interface compliance.
var _ stockledger.ChainLocker = (*ChainLocker)(nil)
