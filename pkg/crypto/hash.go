// Package crypto provides the hashing and signature primitives used to
// namespace storage and authenticate contract calls.
package crypto

import (
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// AccountHash returns the storage namespace for an account id.
func AccountHash(account types.AccountID) types.Hash {
	return Hash([]byte(account))
}

// AddressFromPubKey derives an address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}

// ImplicitAccount returns the implicit account id controlled by pubKey.
func ImplicitAccount(pubKey []byte) types.AccountID {
	return AddressFromPubKey(pubKey).Account()
}
