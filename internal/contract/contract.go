// Package contract implements the reserve-then-mint lifecycle.
//
// A Contract is bound to one storage view for the duration of a call. It
// holds no locks and keeps no state of its own: the host serializes calls
// and discards the storage view when a call returns an error.
package contract

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/log"
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/rs/zerolog"
)

// RoyaltyPercent is the contract owner's share attached to every mint.
const RoyaltyPercent uint32 = 5

// DefaultFeeAccount receives the reservation fee unless genesis names
// another account.
const DefaultFeeAccount types.AccountID = "dev.artdressup.testnet"

// Fixed prices in yocto.
var (
	MinReservationDeposit = types.NEAR(20)
	ReservationFee        = types.NEAR(9)
	BurnRefund            = types.NEAR(10)
)

var (
	keyInit  = []byte("s/init")
	keyOwner = []byte("s/owner")
	keyFee   = []byte("s/fee")
)

// CallContext carries the host-provided facts about the current call.
// Timestamp is in Unix nanoseconds.
type CallContext struct {
	Caller    types.AccountID
	Deposit   types.Amount
	Timestamp uint64
}

// Contract runs lifecycle operations against one storage view.
type Contract struct {
	db           storage.DB
	reservations *reservation.Store
	ledger       *ledger.Ledger
	escrow       escrow.Gateway
	logger       zerolog.Logger
}

// New binds a contract to db, scheduling payments through gw.
func New(db storage.DB, gw escrow.Gateway) *Contract {
	return &Contract{
		db:           db,
		reservations: reservation.NewStore(db),
		ledger:       ledger.New(db),
		escrow:       gw,
		logger:       log.Contract,
	}
}

// SetLogger replaces the contract logger.
func (c *Contract) SetLogger(l zerolog.Logger) {
	c.logger = l
}

// InitParams configures a fresh contract.
type InitParams struct {
	Owner             types.AccountID
	FeeAccount        types.AccountID
	Metadata          *ledger.ContractMetadata
	SequenceNumbering bool
}

// DefaultMetadata returns the collection metadata used when genesis
// supplies none.
func DefaultMetadata() *ledger.ContractMetadata {
	icon := "https://cdn.artdressup.com/icon.png"
	baseURI := "https://cdn.artdressup.com/nft/"
	return &ledger.ContractMetadata{
		Spec:    ledger.MetadataSpec,
		Name:    "Art Dress Up",
		Symbol:  "ADU",
		Icon:    &icon,
		BaseURI: &baseURI,
	}
}

// Init writes the initial contract state. Both counters start at zero.
func Init(db storage.DB, p InitParams) error {
	done, err := db.Has(keyInit)
	if err != nil {
		return fmt.Errorf("init check: %w", err)
	}
	if done {
		return ErrAlreadyInitialized
	}
	if err := p.Owner.Validate(); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if p.FeeAccount == "" {
		p.FeeAccount = DefaultFeeAccount
	}
	if err := p.FeeAccount.Validate(); err != nil {
		return fmt.Errorf("fee account: %w", err)
	}
	if p.Metadata == nil {
		p.Metadata = DefaultMetadata()
	}
	if err := ledger.New(db).SetContractMetadata(p.Metadata); err != nil {
		return err
	}
	if err := db.Put(keyOwner, []byte(p.Owner)); err != nil {
		return err
	}
	if err := db.Put(keyFee, []byte(p.FeeAccount)); err != nil {
		return err
	}
	if p.SequenceNumbering {
		if err := putCounter(db, keySeq, 0); err != nil {
			return err
		}
	}
	if err := putCounter(db, keyBurned, 0); err != nil {
		return err
	}
	return db.Put(keyInit, []byte{1})
}

// Initialized reports whether Init has run on db.
func Initialized(db storage.DB) (bool, error) {
	return db.Has(keyInit)
}

// OwnerID returns the contract owner (the operator).
func (c *Contract) OwnerID() (types.AccountID, error) {
	return c.account(keyOwner)
}

// FeeAccount returns the account receiving reservation fees.
func (c *Contract) FeeAccount() (types.AccountID, error) {
	return c.account(keyFee)
}

// SetOwnerID hands the operator role to newOwner.
func (c *Contract) SetOwnerID(call CallContext, newOwner types.AccountID) (types.AccountID, error) {
	if err := c.requireOwner(call); err != nil {
		return "", err
	}
	if err := newOwner.Validate(); err != nil {
		return "", err
	}
	if err := c.db.Put(keyOwner, []byte(newOwner)); err != nil {
		return "", fmt.Errorf("owner put: %w", err)
	}
	c.logger.Info().Str("old", string(call.Caller)).Str("new", string(newOwner)).Msg("Contract owner changed")
	return newOwner, nil
}

func (c *Contract) requireOwner(call CallContext) error {
	owner, err := c.OwnerID()
	if err != nil {
		return err
	}
	if call.Caller != owner {
		return fmt.Errorf("%w: caller %s", ErrUnauthorized, call.Caller)
	}
	return nil
}

func (c *Contract) account(key []byte) (types.AccountID, error) {
	data, err := c.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrNotInitialized
	}
	if err != nil {
		return "", fmt.Errorf("state get: %w", err)
	}
	return types.AccountID(data), nil
}
