package services

import (
	"context"
	"fmt"

	"tripform/internal/domain"
	"tripform/internal/repositories"
	"tripform/internal/utils"

	"go.uber.org/zap"
)

// SerialService issues the sequential number stamped on every document.
type SerialService struct {
	Store     repositories.CounterStore
	RequestID string
}

func (s SerialService) Read(ctx context.Context) (int64, error) {
	if s.Store == nil {
		return 0, domain.StorageError{Op: "read", Err: fmt.Errorf("counter store not configured")}
	}
	return s.Store.Read(ctx)
}

func (s SerialService) Increment(ctx context.Context) (int64, error) {
	if s.Store == nil {
		return 0, domain.StorageError{Op: "increment", Err: fmt.Errorf("counter store not configured")}
	}
	n, err := s.Store.Increment(ctx)
	if err != nil {
		utils.LogFailure(s.RequestID, "serial", "increment", err)
		return 0, err
	}
	utils.LogEvent(s.RequestID, "serial", "increment", "serial issued", zap.Int64("serial", n))
	return n, nil
}

// Set overwrites the counter. Used by the admin CLI only.
func (s SerialService) Set(ctx context.Context, value int64) error {
	if s.Store == nil {
		return domain.StorageError{Op: "write", Err: fmt.Errorf("counter store not configured")}
	}
	if err := s.Store.Set(ctx, value); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "serial", "set", "serial reset", zap.Int64("serial", value))
	return nil
}
