package types

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Account id length limits.
const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// AddressSize is the length of a key-derived address in bytes.
const AddressSize = 20

// ErrInvalidAccountID is returned for malformed account ids.
var ErrInvalidAccountID = errors.New("invalid account id")

// AccountID names an account. Named accounts look like "alice.testnet";
// implicit accounts are the 40-char hex of an Address.
type AccountID string

// String returns the account id.
func (a AccountID) String() string {
	return string(a)
}

// Validate checks the account id syntax: 2-64 characters of [a-z0-9],
// with single '-', '_' or '.' separators that never lead, trail or repeat.
func (a AccountID) Validate() error {
	s := string(a)
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return fmt.Errorf("%w: %q must be %d-%d characters", ErrInvalidAccountID, s, MinAccountIDLen, MaxAccountIDLen)
	}
	prevSep := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevSep = false
		case c == '-' || c == '_' || c == '.':
			if prevSep {
				return fmt.Errorf("%w: %q has a misplaced separator at %d", ErrInvalidAccountID, s, i)
			}
			prevSep = true
		default:
			return fmt.Errorf("%w: %q has invalid character %q", ErrInvalidAccountID, s, c)
		}
	}
	if prevSep {
		return fmt.Errorf("%w: %q ends with a separator", ErrInvalidAccountID, s)
	}
	return nil
}

// IsImplicit reports whether the account id is the hex form of an Address.
func (a AccountID) IsImplicit() bool {
	if len(a) != AddressSize*2 {
		return false
	}
	_, err := hex.DecodeString(string(a))
	return err == nil
}

// Address represents a 160-bit public key hash.
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the hex-encoded address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Account returns the implicit account id owned by this address.
func (a Address) Account() AccountID {
	return AccountID(a.String())
}
