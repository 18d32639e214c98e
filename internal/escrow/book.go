package escrow

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// ErrInsufficientBalance is returned when a debit exceeds the balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

var (
	prefixBalance = []byte("b/") // b/<account> -> yocto decimal string
	prefixNonce   = []byte("n/") // n/<account> -> u64 BE
)

// Book keeps account balances and call nonces.
type Book struct {
	db storage.DB
}

// NewBook creates a balance book over db.
func NewBook(db storage.DB) *Book {
	return &Book{db: db}
}

// Balance returns the balance of account, zero when unknown.
func (b *Book) Balance(account types.AccountID) (types.Amount, error) {
	data, err := b.db.Get(key(prefixBalance, account))
	if errors.Is(err, storage.ErrNotFound) {
		return types.Zero, nil
	}
	if err != nil {
		return types.Amount{}, fmt.Errorf("balance get: %w", err)
	}
	return types.ParseAmount(string(data))
}

// Credit adds amount to account.
func (b *Book) Credit(account types.AccountID, amount types.Amount) error {
	bal, err := b.Balance(account)
	if err != nil {
		return err
	}
	return b.put(account, bal.Add(amount))
}

// Debit removes amount from account.
func (b *Book) Debit(account types.AccountID, amount types.Amount) error {
	bal, err := b.Balance(account)
	if err != nil {
		return err
	}
	if bal.LessThan(amount) {
		return fmt.Errorf("%w: %s has %s yocto, needs %s", ErrInsufficientBalance, account, bal, amount)
	}
	return b.put(account, bal.Sub(amount))
}

// Move debits from and credits to in one step.
func (b *Book) Move(from, to types.AccountID, amount types.Amount) error {
	if err := b.Debit(from, amount); err != nil {
		return err
	}
	return b.Credit(to, amount)
}

// Nonce returns the last nonce used by account.
func (b *Book) Nonce(account types.AccountID) (uint64, error) {
	data, err := b.db.Get(key(prefixNonce, account))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("nonce get: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("nonce of %s is %d bytes", account, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// SetNonce records the last nonce used by account.
func (b *Book) SetNonce(account types.AccountID, nonce uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return b.db.Put(key(prefixNonce, account), buf[:])
}

func (b *Book) put(account types.AccountID, amount types.Amount) error {
	if err := b.db.Put(key(prefixBalance, account), []byte(amount.String())); err != nil {
		return fmt.Errorf("balance put: %w", err)
	}
	return nil
}

func key(prefix []byte, account types.AccountID) []byte {
	return append(append([]byte{}, prefix...), string(account)...)
}
