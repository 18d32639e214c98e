package keys

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

const keyFileVersion = 1

// Keystore errors.
var (
	ErrKeyExists   = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
)

// KeyInfo is the public part of a key file.
type KeyInfo struct {
	Name      string          `json:"name"`
	AccountID types.AccountID `json:"account_id"`
	PublicKey string          `json:"public_key"`
	Slot      uint32          `json:"slot"`
	CreatedAt time.Time       `json:"created_at"`
}

// keyFile is the on-disk JSON format of a stored key.
type keyFile struct {
	Version       int    `json:"version"`
	EncryptedSeed []byte `json:"encrypted_seed"`
	KeyInfo
}

// Keystore keeps encrypted key files in one directory.
type Keystore struct {
	path string
}

// NewKeystore opens the keystore at path, creating the directory.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) keyPath(name string) string {
	return filepath.Join(ks.path, name+".key")
}

// Create stores the seed of mnemonic under name. The key signs for account,
// or for its implicit account when account is empty.
func (ks *Keystore) Create(name, mnemonic string, slot uint32, account types.AccountID, password []byte, params EncryptionParams) (*KeyInfo, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid key name %q", name)
	}
	path := ks.keyPath(name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrKeyExists, name)
	}

	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	defer zero(seed)
	priv, err := keyFromSeed(seed, slot)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	pub := priv.PublicKey()
	if account == "" {
		account = crypto.ImplicitAccount(pub)
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}

	sealed, err := Seal(seed, password, params)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed: %w", err)
	}
	kf := keyFile{
		Version:       keyFileVersion,
		EncryptedSeed: sealed,
		KeyInfo: KeyInfo{
			Name:      name,
			AccountID: account,
			PublicKey: hex.EncodeToString(pub),
			Slot:      slot,
			CreatedAt: time.Now().UTC(),
		},
	}
	if err := ks.writeFile(path, &kf); err != nil {
		return nil, err
	}
	return &kf.KeyInfo, nil
}

// Load decrypts the key stored under name.
func (ks *Keystore) Load(name string, password []byte) (*crypto.PrivateKey, *KeyInfo, error) {
	kf, err := ks.readFile(name)
	if err != nil {
		return nil, nil, err
	}
	seed, err := Open(kf.EncryptedSeed, password)
	if err != nil {
		return nil, nil, err
	}
	defer zero(seed)
	priv, err := keyFromSeed(seed, kf.Slot)
	if err != nil {
		return nil, nil, err
	}
	if hex.EncodeToString(priv.PublicKey()) != kf.PublicKey {
		priv.Zero()
		return nil, nil, fmt.Errorf("key %q: derived public key does not match the file", name)
	}
	return priv, &kf.KeyInfo, nil
}

// Info returns the public part of a key without decrypting it.
func (ks *Keystore) Info(name string) (*KeyInfo, error) {
	kf, err := ks.readFile(name)
	if err != nil {
		return nil, err
	}
	return &kf.KeyInfo, nil
}

// List returns every stored key sorted by name.
func (ks *Keystore) List() ([]KeyInfo, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var out []KeyInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".key" {
			continue
		}
		kf, err := ks.readFile(e.Name()[:len(e.Name())-len(".key")])
		if err != nil {
			return nil, err
		}
		out = append(out, kf.KeyInfo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a key file.
func (ks *Keystore) Delete(name string) error {
	path := ks.keyPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	return os.Remove(path)
}

func (ks *Keystore) writeFile(path string, kf *keyFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

func (ks *Keystore) readFile(name string) (*keyFile, error) {
	data, err := os.ReadFile(ks.keyPath(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	if kf.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported key file version: %d", kf.Version)
	}
	return &kf, nil
}
