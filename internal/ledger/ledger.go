// Package ledger stores minted tokens.
//
// A token lives in three structures that are always updated together:
// the owner record (t/<id>), the metadata record (m/<id>) and the per-owner
// index (o/<BLAKE3(owner)>/<id>). Records are JSON encoded.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// Ledger errors.
var (
	ErrTokenExists   = errors.New("token already exists")
	ErrTokenNotFound = errors.New("token not found")
)

var (
	prefixToken    = []byte("t/") // t/<id> -> Token JSON
	prefixMetadata = []byte("m/") // m/<id> -> TokenMetadata JSON
	prefixOwner    = []byte("o/") // o/<BLAKE3(owner)>/<id> -> empty
	keyContract    = []byte("s/meta")
)

// Token is the owner record of a minted token. Royalty maps an account to
// its percentage share of future sales.
type Token struct {
	OwnerID types.AccountID            `json:"owner_id"`
	Royalty map[types.AccountID]uint32 `json:"royalty"`
}

// JSONToken is the full view of a minted token.
type JSONToken struct {
	TokenID  types.TokenID              `json:"token_id"`
	OwnerID  types.AccountID            `json:"owner_id"`
	Metadata *TokenMetadata             `json:"metadata"`
	Royalty  map[types.AccountID]uint32 `json:"royalty"`
}

// Ledger persists minted tokens on a DB.
type Ledger struct {
	db storage.DB
}

// New creates a ledger over db.
func New(db storage.DB) *Ledger {
	return &Ledger{db: db}
}

// Mint records a new token owned by owner. Fails with ErrTokenExists when
// the id is already taken.
func (l *Ledger) Mint(id types.TokenID, meta *TokenMetadata, owner types.AccountID, royalty map[types.AccountID]uint32) (*JSONToken, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if meta == nil {
		meta = &TokenMetadata{}
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	exists, err := l.db.Has(tokenKey(id))
	if err != nil {
		return nil, fmt.Errorf("ledger has: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenExists, id)
	}
	if royalty == nil {
		royalty = map[types.AccountID]uint32{}
	}

	tok := Token{OwnerID: owner, Royalty: royalty}
	if err := l.putJSON(tokenKey(id), &tok); err != nil {
		return nil, err
	}
	if err := l.putJSON(metadataKey(id), meta); err != nil {
		return nil, err
	}
	if err := l.db.Put(ownerKey(owner, id), []byte{}); err != nil {
		return nil, fmt.Errorf("ledger owner index: %w", err)
	}
	return &JSONToken{TokenID: id, OwnerID: owner, Metadata: meta, Royalty: royalty}, nil
}

// Has reports whether a token with id has been minted.
func (l *Ledger) Has(id types.TokenID) (bool, error) {
	return l.db.Has(tokenKey(id))
}

// Owner returns the recorded owner of a token.
func (l *Ledger) Owner(id types.TokenID) (types.AccountID, bool, error) {
	var tok Token
	ok, err := l.getJSON(tokenKey(id), &tok)
	if err != nil || !ok {
		return "", ok, err
	}
	return tok.OwnerID, true, nil
}

// Metadata returns the metadata of a token.
func (l *Ledger) Metadata(id types.TokenID) (*TokenMetadata, bool, error) {
	var meta TokenMetadata
	ok, err := l.getJSON(metadataKey(id), &meta)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &meta, true, nil
}

// OwnerIndexContains reports whether id is listed under owner.
func (l *Ledger) OwnerIndexContains(owner types.AccountID, id types.TokenID) (bool, error) {
	return l.db.Has(ownerKey(owner, id))
}

// RemoveMetadata deletes the metadata record of a token.
func (l *Ledger) RemoveMetadata(id types.TokenID) error {
	return l.db.Delete(metadataKey(id))
}

// RemoveToken deletes the owner record of a token.
func (l *Ledger) RemoveToken(id types.TokenID) error {
	return l.db.Delete(tokenKey(id))
}

// RemoveFromOwnerIndex drops id from owner's index.
func (l *Ledger) RemoveFromOwnerIndex(owner types.AccountID, id types.TokenID) error {
	return l.db.Delete(ownerKey(owner, id))
}

// SetContractMetadata stores the collection metadata.
func (l *Ledger) SetContractMetadata(meta *ContractMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	return l.putJSON(keyContract, meta)
}

// ContractMetadata returns the collection metadata.
func (l *Ledger) ContractMetadata() (*ContractMetadata, error) {
	var meta ContractMetadata
	ok, err := l.getJSON(keyContract, &meta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("contract metadata: %w", storage.ErrNotFound)
	}
	return &meta, nil
}

func (l *Ledger) putJSON(key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger marshal: %w", err)
	}
	if err := l.db.Put(key, data); err != nil {
		return fmt.Errorf("ledger put: %w", err)
	}
	return nil
}

func (l *Ledger) getJSON(key []byte, v interface{}) (bool, error) {
	data, err := l.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger get: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("ledger unmarshal: %w", err)
	}
	return true, nil
}

func tokenKey(id types.TokenID) []byte {
	return append(append([]byte{}, prefixToken...), string(id)...)
}

func metadataKey(id types.TokenID) []byte {
	return append(append([]byte{}, prefixMetadata...), string(id)...)
}

func ownerPrefix(owner types.AccountID) []byte {
	h := crypto.AccountHash(owner)
	key := make([]byte, 0, len(prefixOwner)+types.HashSize+1)
	key = append(key, prefixOwner...)
	key = append(key, h[:]...)
	return append(key, '/')
}

func ownerKey(owner types.AccountID, id types.TokenID) []byte {
	return append(ownerPrefix(owner), string(id)...)
}
