package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intdb "tripform/internal/db"
	"tripform/internal/domain"
)

const counterTable = "serial_counter"

// MySQLCounterStore keeps named counters in one row each. Increment locks
// the row with SELECT ... FOR UPDATE inside a transaction.
type MySQLCounterStore struct {
	DB   *sql.DB
	Name string
}

func NewMySQLCounterStore(db *sql.DB, name string) *MySQLCounterStore {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "serial"
	}
	return &MySQLCounterStore{DB: db, Name: name}
}

// Init creates the counter table when it is missing and adds updated_at to
// tables created before it existed.
func (s *MySQLCounterStore) Init(ctx context.Context) error {
	if !intdb.HasTable(ctx, s.DB, counterTable) {
		_, err := s.DB.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS serial_counter (
				name       VARCHAR(64) NOT NULL PRIMARY KEY,
				value      BIGINT NOT NULL DEFAULT 0,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return domain.StorageError{Op: "init", Err: err}
		}
		return nil
	}
	if intdb.HasColumn(ctx, s.DB, counterTable, "updated_at") {
		return nil
	}
	_, err := s.DB.ExecContext(ctx, `
		ALTER TABLE serial_counter
		ADD COLUMN updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	`)
	if err != nil {
		return domain.StorageError{Op: "init", Err: err}
	}
	return nil
}

func (s *MySQLCounterStore) Read(ctx context.Context) (int64, error) {
	var v int64
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM serial_counter WHERE name=?`, s.Name).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, domain.StorageError{Op: "read", Err: err}
	}
	if v < 0 {
		v = 0
	}
	return v, nil
}

func (s *MySQLCounterStore) Increment(ctx context.Context) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT IGNORE INTO serial_counter (name, value) VALUES (?, 0)`, s.Name); err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	var cur int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM serial_counter WHERE name=? FOR UPDATE`, s.Name).Scan(&cur); err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	if cur < 0 {
		cur = 0
	}
	next, err := nextCounter(cur)
	if err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE serial_counter SET value=? WHERE name=?`, next, s.Name); err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, domain.StorageError{Op: "increment", Err: err}
	}
	return next, nil
}

func (s *MySQLCounterStore) Set(ctx context.Context, value int64) error {
	if value < 0 {
		return domain.ValidationError{Field: "serial", Msg: "must not be negative"}
	}
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO serial_counter (name, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value=VALUES(value)
	`, s.Name, value)
	if err != nil {
		return domain.StorageError{Op: "write", Err: err}
	}
	return nil
}

func (s *MySQLCounterStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

var _ CounterStore = (*MySQLCounterStore)(nil)
