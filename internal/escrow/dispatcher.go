package escrow

import (
	"context"
	"errors"
	"time"

	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
)

// Executor runs fn as one atomic unit against the contract state.
type Executor interface {
	Exclusive(fn func(db storage.DB) error) error
}

// Dispatcher pays committed transfers out of the contract account.
type Dispatcher struct {
	exec     Executor
	contract types.AccountID
	interval time.Duration
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher paying from the contract account.
func NewDispatcher(exec Executor, contract types.AccountID, interval time.Duration, logger zerolog.Logger) *Dispatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Dispatcher{exec: exec, contract: contract, interval: interval, logger: logger}
}

// DispatchOnce pays every pending transfer, each in its own atomic unit.
// A transfer the contract cannot fund stays in the outbox.
func (d *Dispatcher) DispatchOnce() (int, error) {
	var pending []Transfer
	err := d.exec.Exclusive(func(db storage.DB) error {
		var err error
		pending, err = NewOutbox(db).Pending()
		return err
	})
	if err != nil {
		return 0, err
	}

	paid := 0
	for _, tr := range pending {
		err := d.exec.Exclusive(func(db storage.DB) error {
			if err := NewBook(db).Move(d.contract, tr.To, tr.Amount); err != nil {
				return err
			}
			return NewOutbox(db).Remove(tr.TraceID)
		})
		if errors.Is(err, ErrInsufficientBalance) {
			d.logger.Warn().Str("trace_id", tr.TraceID.String()).
				Str("to", string(tr.To)).
				Str("amount", tr.Amount.String()).
				Msg("Contract balance too low, transfer deferred")
			continue
		}
		if err != nil {
			return paid, err
		}
		paid++
		d.logger.Info().Str("trace_id", tr.TraceID.String()).
			Str("to", string(tr.To)).
			Str("amount_near", tr.Amount.NEARString()).
			Str("memo", tr.Memo).
			Msg("Transfer paid")
	}
	return paid, nil
}

// Run dispatches on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DispatchOnce(); err != nil {
				d.logger.Error().Err(err).Msg("Transfer dispatch failed")
			}
		}
	}
}
