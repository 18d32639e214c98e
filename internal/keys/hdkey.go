package keys

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 path components: m/44'/8888'/account'/0/0.
const (
	PurposeBIP44  = bip32.FirstHardenedChild + 44
	CoinType      = bip32.FirstHardenedChild + 8888
	ChangeSigning = 0
	IndexSigning  = 0
)

// ErrPublicOnly is returned when a private key is needed from a neutered key.
var ErrPublicOnly = errors.New("key has no private part")

// HDKey is a BIP-32 hierarchical deterministic key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives a key along a sequence of indices. Hardened indices
// include bip32.FirstHardenedChild.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k.key
	for _, idx := range indices {
		child, err := current.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		current = child
	}
	return &HDKey{key: current}, nil
}

// SigningKey derives the call-signing key of the given account slot.
func (k *HDKey) SigningKey(account uint32) (*HDKey, error) {
	return k.DerivePath(
		PurposeBIP44,
		CoinType,
		bip32.FirstHardenedChild+account,
		ChangeSigning,
		IndexSigning,
	)
}

// PrivateKey returns the secp256k1 private key.
func (k *HDKey) PrivateKey() (*crypto.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, ErrPublicOnly
	}
	// bip32 stores private keys as 33 bytes with a leading zero.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// ImplicitAccount returns the implicit account controlled by this key.
func (k *HDKey) ImplicitAccount() types.AccountID {
	return crypto.ImplicitAccount(k.PublicKeyBytes())
}

// Depth returns the derivation depth (0 for master).
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// Neuter returns a public-only copy.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}

// KeyFromMnemonic derives the signing key of account slot from a phrase.
func KeyFromMnemonic(mnemonic, passphrase string, account uint32) (*crypto.PrivateKey, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(seed)
	return keyFromSeed(seed, account)
}

func keyFromSeed(seed []byte, account uint32) (*crypto.PrivateKey, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	hd, err := master.SigningKey(account)
	if err != nil {
		return nil, err
	}
	return hd.PrivateKey()
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
