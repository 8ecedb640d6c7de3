package repositories

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"tripform/internal/domain"
)

// CounterStore persists the serial counter. Increment must be atomic with
// respect to every other caller of the same store.
type CounterStore interface {
	Read(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
	Set(ctx context.Context, value int64) error
	Close() error
}

// parseCounter is lenient: leading digits only, anything unparsable is 0.
// Negative values clamp to 0. A digit run past int64 is a StorageError.
func parseCounter(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || neg {
		return 0, nil
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, domain.StorageError{Op: "read", Err: fmt.Errorf("counter value %q: %w", s[:end], err)}
	}
	return n, nil
}

var errCounterExhausted = errors.New("counter reached its maximum value")

// nextCounter returns cur+1, refusing to wrap past int64.
func nextCounter(cur int64) (int64, error) {
	if cur == math.MaxInt64 {
		return 0, errCounterExhausted
	}
	return cur + 1, nil
}
