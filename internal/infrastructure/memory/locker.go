package memory

import (
	"context"
	"sync"
	"time"

	"landedcost/internal/core/apperror"
	"landedcost/internal/domain/registers/stockledger"
)

const lockRetryInterval = 5 * time.Millisecond

// ChainLocker serializes revaluation chains with an in-process keyed mutex.
// Callers lock sorted key sets, so all-or-nothing acquisition cannot
// deadlock; waiting past the timeout surfaces as ConcurrentRevaluation.
type ChainLocker struct {
	mu      sync.Mutex
	held    map[stockledger.ChainKey]struct{}
	timeout time.Duration
}

// NewChainLocker creates a locker with the given acquisition timeout.
func NewChainLocker(timeout time.Duration) *ChainLocker {
	return &ChainLocker{
		held:    make(map[stockledger.ChainKey]struct{}),
		timeout: timeout,
	}
}

func (l *ChainLocker) LockChains(ctx context.Context, keys []stockledger.ChainKey) (func(), error) {
	deadline := time.Now().Add(l.timeout)

	for {
		busy, ok := l.tryAcquire(keys)
		if ok {
			return func() { l.release(keys) }, nil
		}

		if time.Now().After(deadline) {
			return nil, apperror.NewConcurrentRevaluation(busy.ItemCode, busy.Warehouse)
		}

		select {
		case <-ctx.Done():
			return nil, apperror.NewConcurrentRevaluation(busy.ItemCode, busy.Warehouse)
		case <-time.After(lockRetryInterval):
		}
	}
}

// tryAcquire marks every key held if all are free; otherwise it reports the
// first busy key and takes nothing.
func (l *ChainLocker) tryAcquire(keys []stockledger.ChainKey) (stockledger.ChainKey, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		if _, taken := l.held[key]; taken {
			return key, false
		}
	}
	for _, key := range keys {
		l.held[key] = struct{}{}
	}
	return stockledger.ChainKey{}, true
}

func (l *ChainLocker) release(keys []stockledger.ChainKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		delete(l.held, key)
	}
}

var _ stockledger.ChainLocker = (*ChainLocker)(nil)
