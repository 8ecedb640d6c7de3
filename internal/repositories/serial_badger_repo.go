package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"tripform/internal/domain"

	"github.com/dgraph-io/badger/v4"
)

var serialKey = []byte("serial:counter")

const badgerConflictRetries = 16

// BadgerCounterStore keeps the counter in an embedded badger database.
// Increment is a single read-write transaction; conflicts are retried.
type BadgerCounterStore struct {
	db *badger.DB
}

// OpenBadgerCounterStore opens (or creates) a badger directory.
func OpenBadgerCounterStore(dir string) (*BadgerCounterStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, domain.StorageError{Op: "open", Err: fmt.Errorf("badger %s: %w", dir, err)}
	}
	return &BadgerCounterStore{db: db}, nil
}

func NewBadgerCounterStore(db *badger.DB) *BadgerCounterStore {
	return &BadgerCounterStore{db: db}
}

func (s *BadgerCounterStore) Read(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.StorageError{Op: "read", Err: err}
	}
	var cur int64
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		cur, err = readCounter(txn)
		return err
	})
	if err != nil {
		return 0, domain.StorageError{Op: "read", Err: err}
	}
	return cur, nil
}

func (s *BadgerCounterStore) Increment(ctx context.Context) (int64, error) {
	var next int64
	var err error
	for attempt := 0; attempt < badgerConflictRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			break
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			cur, err := readCounter(txn)
			if err != nil {
				return err
			}
			if next, err = nextCounter(cur); err != nil {
				return err
			}
			return txn.Set(serialKey, []byte(strconv.FormatInt(next, 10)))
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	return next, nil
}

func (s *BadgerCounterStore) Set(ctx context.Context, value int64) error {
	if value < 0 {
		return domain.ValidationError{Field: "serial", Msg: "must not be negative"}
	}
	if err := ctx.Err(); err != nil {
		return domain.StorageError{Op: "write", Err: err}
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(serialKey, []byte(strconv.FormatInt(value, 10)))
	})
	if err != nil {
		return domain.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *BadgerCounterStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func readCounter(txn *badger.Txn) (int64, error) {
	item, err := txn.Get(serialKey)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var cur int64
	err = item.Value(func(val []byte) error {
		cur, err = parseCounter(string(val))
		return err
	})
	return cur, err
}

var _ CounterStore = (*BadgerCounterStore)(nil)
