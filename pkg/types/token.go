package types

import (
	"errors"
	"fmt"
)

// MaxTokenIDLen bounds caller-supplied token ids.
const MaxTokenIDLen = 256

// ErrInvalidTokenID is returned for empty or oversized token ids.
var ErrInvalidTokenID = errors.New("invalid token id")

// TokenID is an opaque, caller-supplied token identifier.
type TokenID string

// String returns the token id.
func (t TokenID) String() string {
	return string(t)
}

// Validate checks that the id is non-empty and within MaxTokenIDLen bytes.
func (t TokenID) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTokenID)
	}
	if len(t) > MaxTokenIDLen {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidTokenID, len(t), MaxTokenIDLen)
	}
	return nil
}
