package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landedcost/internal/core/apperror"
	"landedcost/internal/domain/registers/stockledger"
)

func TestChainLocker_Contention(t *testing.T) {
	locker := NewChainLocker(20 * time.Millisecond)
	ctx := context.Background()
	key := stockledger.ChainKey{ItemCode: "ITEM-A", Warehouse: "WH-MAIN"}

	release, err := locker.LockChains(ctx, []stockledger.ChainKey{key})
	require.NoError(t, err)

	_, err = locker.LockChains(ctx, []stockledger.ChainKey{key})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentRevaluation))

	release()

	release, err = locker.LockChains(ctx, []stockledger.ChainKey{key})
	require.NoError(t, err)
	release()
}

func TestChainLocker_AllOrNothing(t *testing.T) {
	locker := NewChainLocker(20 * time.Millisecond)
	ctx := context.Background()
	keyA := stockledger.ChainKey{ItemCode: "ITEM-A", Warehouse: "WH-MAIN"}
	keyB := stockledger.ChainKey{ItemCode: "ITEM-B", Warehouse: "WH-MAIN"}

	releaseB, err := locker.LockChains(ctx, []stockledger.ChainKey{keyB})
	require.NoError(t, err)

	// A multi-key request that hits the held key must take nothing.
	_, err = locker.LockChains(ctx, []stockledger.ChainKey{keyA, keyB})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeConcurrentRevaluation))

	releaseA, err := locker.LockChains(ctx, []stockledger.ChainKey{keyA})
	require.NoError(t, err, "the failed request must not leave its free keys held")
	releaseA()
	releaseB()
}

func TestChainLocker_WaitsForRelease(t *testing.T) {
	locker := NewChainLocker(500 * time.Millisecond)
	ctx := context.Background()
	key := stockledger.ChainKey{ItemCode: "ITEM-A", Warehouse: "WH-MAIN"}

	release, err := locker.LockChains(ctx, []stockledger.ChainKey{key})
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		release()
	}()

	acquired, err := locker.LockChains(ctx, []stockledger.ChainKey{key})
	require.NoError(t, err)
	acquired()
}
