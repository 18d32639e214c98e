package contract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/artdressup/internal/storage"
)

var (
	keySeq    = []byte("c/seq") // absent when sequence numbering is off
	keyBurned = []byte("c/del")
)

// Counters reports the mint sequence and burn audit counters.
type Counters struct {
	SequenceEnabled bool   `json:"sequence_enabled"`
	MintSequence    uint32 `json:"mint_sequence"`
	Burned          uint32 `json:"burned"`
}

// Counters returns the current counter values.
func (c *Contract) Counters() (Counters, error) {
	seq, enabled, err := getCounter(c.db, keySeq)
	if err != nil {
		return Counters{}, err
	}
	burned, _, err := getCounter(c.db, keyBurned)
	if err != nil {
		return Counters{}, err
	}
	return Counters{SequenceEnabled: enabled, MintSequence: seq, Burned: burned}, nil
}

func nextCounter(db storage.DB, key []byte) (uint32, bool, error) {
	n, ok, err := getCounter(db, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if n == math.MaxUint32 {
		return 0, true, fmt.Errorf("%w: %s", ErrCounterOverflow, key)
	}
	return n + 1, true, nil
}

func getCounter(db storage.DB, key []byte) (uint32, bool, error) {
	data, err := db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("counter get: %w", err)
	}
	if len(data) != 4 {
		return 0, false, fmt.Errorf("counter %s is %d bytes", key, len(data))
	}
	return binary.BigEndian.Uint32(data), true, nil
}

func putCounter(db storage.DB, key []byte, n uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	if err := db.Put(key, buf[:]); err != nil {
		return fmt.Errorf("counter put: %w", err)
	}
	return nil
}
