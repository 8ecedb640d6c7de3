package repositories

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"tripform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCounter(t *testing.T) {
	cases := map[string]int64{
		"":        0,
		"41":      41,
		" 7\n":    7,
		"12abc":   12,
		"abc":     0,
		"-5":      0,
		"+3":      3,
		"3.9":     3,
		"\t\t100": 100,

		"5000000000000000000":   5000000000000000000,
		"9223372036854775807":   9223372036854775807,
		"460000000000000001abc": 460000000000000001,
	}
	for in, want := range cases {
		got, err := parseCounter(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestParseCounter_OutOfRange(t *testing.T) {
	_, err := parseCounter("9223372036854775808")
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))
}

func TestFileCounterStore_LargeValueKeepsAllDigits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	require.NoError(t, os.WriteFile(path, []byte("5000000000000000000"), 0o644))
	store := NewFileCounterStore(path)

	n, err := store.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5000000000000000001), n)
}

func TestFileCounterStore_OverflowIsStorageError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	require.NoError(t, os.WriteFile(path, []byte("99999999999999999999"), 0o644))
	store := NewFileCounterStore(path)

	_, err := store.Increment(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "99999999999999999999", string(b))
}

func TestFileCounterStore_FirstIncrementWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	store := NewFileCounterStore(path)

	n, err := store.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))
}

func TestFileCounterStore_IncrementFromStoredValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	require.NoError(t, os.WriteFile(path, []byte("41"), 0o644))
	store := NewFileCounterStore(path)

	n, err := store.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42", string(b))
}

func TestFileCounterStore_GarbageCountsAsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0o644))
	store := NewFileCounterStore(path)

	n, err := store.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestFileCounterStore_ReadIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	require.NoError(t, os.WriteFile(path, []byte("9"), 0o644))
	store := NewFileCounterStore(path)

	for i := 0; i < 5; i++ {
		v, err := store.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(9), v)
	}
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9", string(b))
}

func TestFileCounterStore_ReadMissingFile(t *testing.T) {
	store := NewFileCounterStore(filepath.Join(t.TempDir(), "absent.txt"))
	v, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestFileCounterStore_ConcurrentIncrementsAreDistinct(t *testing.T) {
	store := NewFileCounterStore(filepath.Join(t.TempDir(), "serial.txt"))

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := store.Increment(context.Background())
			if err == nil {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int64]bool{}
	for n := range results {
		assert.False(t, seen[n], "duplicate serial %d", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "missing serial %d", i)
	}
}

func TestFileCounterStore_StorageFailure(t *testing.T) {
	dir := t.TempDir()
	// a directory where the counter file should be makes both read and write fail
	path := filepath.Join(dir, "serial.txt")
	require.NoError(t, os.Mkdir(path, 0o755))
	store := NewFileCounterStore(path)

	_, err := store.Increment(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	_, err = store.Read(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))
}

func TestFileCounterStore_Set(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serial.txt")
	store := NewFileCounterStore(path)

	require.NoError(t, store.Set(context.Background(), 100))
	n, err := store.Increment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(101), n)

	err = store.Set(context.Background(), -1)
	assert.True(t, domain.IsValidation(err))
}
