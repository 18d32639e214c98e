// Package escrow moves value between accounts.
//
// Transfers scheduled during a call are written to an outbox in the call's
// own storage, so they commit or vanish together with the call. The
// Dispatcher pays committed transfers out of the contract balance.
package escrow

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/gofrs/uuid"
)

var prefixOutbox = []byte("x/") // x/<trace uuid> -> Transfer JSON

// Transfer is a scheduled payment from the contract account.
type Transfer struct {
	TraceID   uuid.UUID       `json:"trace_id"`
	To        types.AccountID `json:"to"`
	Amount    types.Amount    `json:"amount"`
	Memo      string          `json:"memo,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

// Gateway schedules transfers atomically with the enclosing call.
type Gateway interface {
	ScheduleTransfer(to types.AccountID, amount types.Amount, memo string) (uuid.UUID, error)
}

// Outbox persists scheduled transfers.
type Outbox struct {
	db  storage.DB
	now func() time.Time
}

// NewOutbox creates an outbox over db.
func NewOutbox(db storage.DB) *Outbox {
	return &Outbox{db: db, now: time.Now}
}

// ScheduleTransfer records a transfer under a fresh trace id.
func (o *Outbox) ScheduleTransfer(to types.AccountID, amount types.Amount, memo string) (uuid.UUID, error) {
	if amount.IsNegative() || amount.IsZero() {
		return uuid.Nil, fmt.Errorf("transfer amount must be positive, got %s", amount)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("trace id: %w", err)
	}
	tr := Transfer{
		TraceID:   id,
		To:        to,
		Amount:    amount,
		Memo:      memo,
		CreatedAt: o.now().UnixNano(),
	}
	data, err := json.Marshal(&tr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("transfer marshal: %w", err)
	}
	if err := o.db.Put(outboxKey(id), data); err != nil {
		return uuid.Nil, fmt.Errorf("transfer put: %w", err)
	}
	return id, nil
}

// Pending returns the scheduled transfers ordered by creation time.
func (o *Outbox) Pending() ([]Transfer, error) {
	var out []Transfer
	err := o.db.ForEach(prefixOutbox, func(_, value []byte) error {
		var tr Transfer
		if err := json.Unmarshal(value, &tr); err != nil {
			return fmt.Errorf("transfer unmarshal: %w", err)
		}
		out = append(out, tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// Remove deletes a transfer from the outbox.
func (o *Outbox) Remove(id uuid.UUID) error {
	return o.db.Delete(outboxKey(id))
}

func outboxKey(id uuid.UUID) []byte {
	return append(append([]byte{}, prefixOutbox...), id.String()...)
}
