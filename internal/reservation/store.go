// Package reservation stores pending reservations as one ordered vector
// per account.
//
// Each account with reservations has an entry r/<account> holding its
// namespace, the BLAKE3 hash of the account id. The vector lives under
// rv/<namespace>/: a big-endian length at "len" and msgpack records at
// the 8-byte big-endian index. An account entry never holds an empty
// vector.
package reservation

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/vmihailenco/msgpack/v4"
)

var (
	prefixAccount = []byte("r/")  // r/<account> -> namespace(32)
	prefixVector  = []byte("rv/") // rv/<namespace>/...
	keyLen        = []byte("len")
)

// ErrCorrupt is returned when a stored vector is inconsistent.
var ErrCorrupt = errors.New("reservation store corrupt")

// Reservation is a pending claim on a token id. ReservationTime is the
// host timestamp of the creating call in Unix nanoseconds.
type Reservation struct {
	TokenID         types.TokenID `msgpack:"token_id" json:"token_id"`
	ReservationTime uint64        `msgpack:"reservation_time" json:"reservation_time"`
}

// Store maps accounts to their reservation vectors.
type Store struct {
	db storage.DB
}

// NewStore creates a reservation store over db.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Get returns the account's reservations in stored order. The bool is
// false when the account has no entry.
func (s *Store) Get(account types.AccountID) ([]Reservation, bool, error) {
	vec, ok, err := s.vector(account)
	if err != nil || !ok {
		return nil, false, err
	}
	n, err := vec.length()
	if err != nil {
		return nil, false, err
	}
	out := make([]Reservation, 0, n)
	for i := uint64(0); i < n; i++ {
		r, err := vec.get(i)
		if err != nil {
			return nil, false, err
		}
		out = append(out, r)
	}
	return out, true, nil
}

// IndexOf returns the position of the first reservation for id.
func (s *Store) IndexOf(account types.AccountID, id types.TokenID) (uint64, bool, error) {
	vec, ok, err := s.vector(account)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := vec.length()
	if err != nil {
		return 0, false, err
	}
	for i := uint64(0); i < n; i++ {
		r, err := vec.get(i)
		if err != nil {
			return 0, false, err
		}
		if r.TokenID == id {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Contains reports whether the account holds a reservation for id.
func (s *Store) Contains(account types.AccountID, id types.TokenID) (bool, error) {
	_, ok, err := s.IndexOf(account, id)
	return ok, err
}

// Append adds r to the end of the account's vector, creating the entry
// if needed.
func (s *Store) Append(account types.AccountID, r Reservation) error {
	vec, ok, err := s.vector(account)
	if err != nil {
		return err
	}
	if !ok {
		ns := crypto.AccountHash(account)
		if err := s.db.Put(accountKey(account), ns[:]); err != nil {
			return fmt.Errorf("reservation entry: %w", err)
		}
		vec = newVector(s.db, ns)
	}
	n, err := vec.length()
	if err != nil {
		return err
	}
	if err := vec.set(n, r); err != nil {
		return err
	}
	return vec.setLength(n + 1)
}

// SwapRemove removes the reservation at idx by moving the last element
// into its place; the order of the remaining reservations is not kept.
// The account entry is deleted when its vector becomes empty.
func (s *Store) SwapRemove(account types.AccountID, idx uint64) (Reservation, error) {
	vec, ok, err := s.vector(account)
	if err != nil {
		return Reservation{}, err
	}
	if !ok {
		return Reservation{}, fmt.Errorf("%w: no entry for %s", ErrCorrupt, account)
	}
	n, err := vec.length()
	if err != nil {
		return Reservation{}, err
	}
	if idx >= n {
		return Reservation{}, fmt.Errorf("%w: index %d out of range %d", ErrCorrupt, idx, n)
	}
	removed, err := vec.get(idx)
	if err != nil {
		return Reservation{}, err
	}
	last := n - 1
	if n == 1 {
		return removed, s.Delete(account)
	}
	if idx != last {
		tail, err := vec.get(last)
		if err != nil {
			return Reservation{}, err
		}
		if err := vec.set(idx, tail); err != nil {
			return Reservation{}, err
		}
	}
	if err := vec.db.Delete(indexKey(last)); err != nil {
		return Reservation{}, fmt.Errorf("reservation delete: %w", err)
	}
	return removed, vec.setLength(last)
}

// Delete removes the account's entry and every reservation in it. It is
// a no-op when the account has no entry.
func (s *Store) Delete(account types.AccountID) error {
	vec, ok, err := s.vector(account)
	if err != nil || !ok {
		return err
	}
	if err := vec.db.DeleteAll(); err != nil {
		return fmt.Errorf("reservation clear: %w", err)
	}
	return s.db.Delete(accountKey(account))
}

func (s *Store) vector(account types.AccountID) (*vector, bool, error) {
	data, err := s.db.Get(accountKey(account))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reservation entry: %w", err)
	}
	if len(data) != types.HashSize {
		return nil, false, fmt.Errorf("%w: namespace of %s is %d bytes", ErrCorrupt, account, len(data))
	}
	var ns types.Hash
	copy(ns[:], data)
	return newVector(s.db, ns), true, nil
}

// vector is a persistent length-prefixed array inside one namespace.
type vector struct {
	db *storage.PrefixDB
}

func newVector(db storage.DB, ns types.Hash) *vector {
	prefix := make([]byte, 0, len(prefixVector)+types.HashSize+1)
	prefix = append(prefix, prefixVector...)
	prefix = append(prefix, ns[:]...)
	prefix = append(prefix, '/')
	return &vector{db: storage.NewPrefixDB(db, prefix)}
}

func (v *vector) length() (uint64, error) {
	data, err := v.db.Get(keyLen)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reservation length: %w", err)
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: length is %d bytes", ErrCorrupt, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (v *vector) setLength(n uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return v.db.Put(keyLen, buf[:])
}

func (v *vector) get(i uint64) (Reservation, error) {
	data, err := v.db.Get(indexKey(i))
	if err != nil {
		return Reservation{}, fmt.Errorf("reservation %d: %w", i, err)
	}
	var r Reservation
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return Reservation{}, fmt.Errorf("reservation %d decode: %w", i, err)
	}
	return r, nil
}

func (v *vector) set(i uint64, r Reservation) error {
	data, err := msgpack.Marshal(&r)
	if err != nil {
		return fmt.Errorf("reservation encode: %w", err)
	}
	return v.db.Put(indexKey(i), data)
}

func accountKey(account types.AccountID) []byte {
	return append(append([]byte{}, prefixAccount...), string(account)...)
}

func indexKey(i uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], i)
	return buf[:]
}
