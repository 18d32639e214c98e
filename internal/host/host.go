// Package host runs contract calls one at a time.
//
// Every call executes on a staging overlay of the contract database. The
// overlay is committed as one batch when the call succeeds and dropped when
// it fails, so a failed call leaves no reservation, ledger, counter,
// balance or scheduled transfer behind.
package host

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/log"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
	"github.com/sasha-s/go-deadlock"
)

// Host errors.
var (
	ErrUnknownMethod = errors.New("unknown method")
	ErrNotPayable    = errors.New("method does not accept a deposit")
	ErrInvalidArgs   = errors.New("invalid arguments")
	ErrBadSignature  = errors.New("invalid signature")
	ErrUnknownKey    = errors.New("public key is not an access key of the caller")
	ErrBadNonce      = errors.New("nonce must exceed the last used nonce")
)

// Config configures a Host.
type Config struct {
	// ContractID is the account that holds attached deposits and pays
	// scheduled transfers.
	ContractID types.AccountID
	// AccessKeys binds hex-encoded compressed public keys to named accounts.
	AccessKeys map[types.AccountID][]string
}

// Host serializes contract calls against one database.
type Host struct {
	mu         deadlock.Mutex
	db         storage.DB
	contractID types.AccountID
	keys       map[types.AccountID][][]byte
	now        func() time.Time
	logger     zerolog.Logger
	callLogger zerolog.Logger // base for per-call contract loggers
}

// New creates a host over db.
func New(db storage.DB, cfg Config) (*Host, error) {
	if err := cfg.ContractID.Validate(); err != nil {
		return nil, fmt.Errorf("contract id: %w", err)
	}
	keys := make(map[types.AccountID][][]byte, len(cfg.AccessKeys))
	for account, hexKeys := range cfg.AccessKeys {
		for _, k := range hexKeys {
			b, err := hex.DecodeString(k)
			if err != nil || len(b) != 33 {
				return nil, fmt.Errorf("access key %q of %s: must be a 33-byte hex public key", k, account)
			}
			keys[account] = append(keys[account], b)
		}
	}
	return &Host{
		db:         db,
		contractID: cfg.ContractID,
		keys:       keys,
		now:        time.Now,
		logger:     log.Host,
		callLogger: log.Contract,
	}, nil
}

// SetClock replaces the time source used for call timestamps.
func (h *Host) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// ContractID returns the contract account.
func (h *Host) ContractID() types.AccountID {
	return h.contractID
}

// Genesis initializes the contract and credits the initial balances. It
// is a no-op returning false when the contract is already initialized.
func (h *Host) Genesis(params contract.InitParams, alloc map[types.AccountID]types.Amount) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	done, err := contract.Initialized(h.db)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}
	_, err = h.stage(func(db storage.DB) error {
		if err := contract.Init(db, params); err != nil {
			return err
		}
		book := escrow.NewBook(db)
		for account, amount := range alloc {
			if err := book.Credit(account, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("genesis: %w", err)
	}
	h.logger.Info().Str("owner", string(params.Owner)).Int("alloc", len(alloc)).Msg("Contract initialized")
	return true, nil
}

// Submit authenticates a signed envelope and executes it.
func (h *Host) Submit(env *Envelope) (interface{}, error) {
	if err := env.Caller.Validate(); err != nil {
		return nil, err
	}
	pub, err := env.verify()
	if err != nil {
		return nil, err
	}
	if err := h.authorize(env.Caller, pub); err != nil {
		return nil, err
	}
	nonce := env.Nonce
	return h.execute(env.Caller, env.Deposit, &nonce, env.Method, env.Args)
}

// Call executes a method as caller without signature or nonce checks.
// It is the entry point for trusted in-process callers.
func (h *Host) Call(caller types.AccountID, deposit types.Amount, method string, args json.RawMessage) (interface{}, error) {
	return h.execute(caller, deposit, nil, method, args)
}

// View runs fn against the committed state. Writes made by fn are dropped.
func (h *Host) View(fn func(c *contract.Contract) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := storage.NewStaging(h.db)
	defer st.Discard()
	return fn(contract.New(st, escrow.NewOutbox(st)))
}

// Exclusive runs fn as one serialized atomic unit.
func (h *Host) Exclusive(fn func(db storage.DB) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.stage(fn)
	return err
}

// Balance returns the balance of account.
func (h *Host) Balance(account types.AccountID) (types.Amount, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return escrow.NewBook(h.db).Balance(account)
}

// Nonce returns the last nonce used by account.
func (h *Host) Nonce(account types.AccountID) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return escrow.NewBook(h.db).Nonce(account)
}

func (h *Host) authorize(caller types.AccountID, pub []byte) error {
	if caller.IsImplicit() {
		if crypto.ImplicitAccount(pub) != caller {
			return fmt.Errorf("%w: %s", ErrUnknownKey, caller)
		}
		return nil
	}
	for _, k := range h.keys[caller] {
		if bytes.Equal(k, pub) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, caller)
}

func (h *Host) execute(caller types.AccountID, deposit types.Amount, nonce *uint64, name string, args json.RawMessage) (interface{}, error) {
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	if deposit.IsNegative() {
		return nil, fmt.Errorf("%w: negative deposit", ErrInvalidArgs)
	}
	if !m.payable && !deposit.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrNotPayable, name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	call := contract.CallContext{
		Caller:    caller,
		Deposit:   deposit,
		Timestamp: uint64(h.now().UnixNano()),
	}
	logger := log.WithAccount(h.logger, string(caller))
	var result interface{}
	writes, err := h.stage(func(db storage.DB) error {
		book := escrow.NewBook(db)
		if nonce != nil {
			last, err := book.Nonce(caller)
			if err != nil {
				return err
			}
			if *nonce <= last {
				return fmt.Errorf("%w: got %d, last %d", ErrBadNonce, *nonce, last)
			}
			if err := book.SetNonce(caller, *nonce); err != nil {
				return err
			}
		}
		if !deposit.IsZero() {
			if err := book.Move(caller, h.contractID, deposit); err != nil {
				return err
			}
		}
		c := contract.New(db, escrow.NewOutbox(db))
		c.SetLogger(log.WithAccount(h.callLogger, string(caller)))
		var err error
		result, err = m.run(c, call, args)
		return err
	})
	if err != nil {
		logger.Warn().Str("method", name).Err(err).Msg("Call rejected")
		return nil, err
	}
	logger.Info().Str("method", name).Str("deposit", deposit.String()).
		Int("writes", writes).Msg("Call committed")
	return result, nil
}

// stage runs fn on a staging overlay and commits it when fn succeeds,
// returning the number of committed writes. Callers hold h.mu.
func (h *Host) stage(fn func(db storage.DB) error) (int, error) {
	st := storage.NewStaging(h.db)
	if err := fn(st); err != nil {
		st.Discard()
		return 0, err
	}
	writes := st.Pending()
	if err := st.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return writes, nil
}
