package repositories

import (
	"context"
	"math"
	"sync"
	"testing"

	"tripform/internal/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemBadger(t *testing.T) *BadgerCounterStore {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	store := NewBadgerCounterStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerCounterStore_IncrementAndRead(t *testing.T) {
	store := newMemBadger(t)
	ctx := context.Background()

	v, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	for want := int64(1); want <= 3; want++ {
		n, err := store.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	v, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestBadgerCounterStore_SetThenIncrement(t *testing.T) {
	store := newMemBadger(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 500))
	n, err := store.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(501), n)
}

func TestBadgerCounterStore_ConcurrentIncrements(t *testing.T) {
	store := newMemBadger(t)

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int64]bool{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.Increment(context.Background())
			if err != nil {
				t.Errorf("increment: %v", err)
				return
			}
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers)
}

func TestBadgerCounterStore_LargeValues(t *testing.T) {
	store := newMemBadger(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 5000000000000000000))
	n, err := store.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000000000001), n)

	require.NoError(t, store.Set(ctx, math.MaxInt64))
	_, err = store.Increment(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	v, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)
}
