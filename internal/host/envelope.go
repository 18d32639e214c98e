package host

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// Envelope is a signed contract call.
type Envelope struct {
	Caller    types.AccountID `json:"caller"`
	Method    string          `json:"method"`
	Args      json.RawMessage `json:"args"`
	Deposit   types.Amount    `json:"deposit"`
	Nonce     uint64          `json:"nonce"`
	PublicKey string          `json:"public_key"`
	Signature string          `json:"signature,omitempty"`
}

type signingPayload struct {
	Caller    types.AccountID `json:"caller"`
	Method    string          `json:"method"`
	Args      json.RawMessage `json:"args"`
	Deposit   types.Amount    `json:"deposit"`
	Nonce     uint64          `json:"nonce"`
	PublicKey string          `json:"public_key"`
}

// SigningHash returns the BLAKE3 digest the signature commits to. Args are
// re-encoded with sorted object keys first, so neither whitespace nor key
// order changes the digest.
func (e *Envelope) SigningHash() (types.Hash, error) {
	args, err := canonicalArgs(e.Args)
	if err != nil {
		return types.Hash{}, err
	}
	data, err := json.Marshal(&signingPayload{
		Caller:    e.Caller,
		Method:    e.Method,
		Args:      args,
		Deposit:   e.Deposit,
		Nonce:     e.Nonce,
		PublicKey: e.PublicKey,
	})
	if err != nil {
		return types.Hash{}, fmt.Errorf("envelope marshal: %w", err)
	}
	return crypto.Hash(data), nil
}

// canonicalArgs re-encodes raw JSON with sorted object keys. Numbers are
// kept verbatim.
func canonicalArgs(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}"), nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return out, nil
}

// Sign fills PublicKey and Signature using key.
func (e *Envelope) Sign(key *crypto.PrivateKey) error {
	e.PublicKey = hex.EncodeToString(key.PublicKey())
	digest, err := e.SigningHash()
	if err != nil {
		return err
	}
	sig, err := key.Sign(digest[:])
	if err != nil {
		return err
	}
	e.Signature = hex.EncodeToString(sig)
	return nil
}

// verify checks the signature and returns the signer's public key.
func (e *Envelope) verify() ([]byte, error) {
	pub, err := hex.DecodeString(e.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrBadSignature, err)
	}
	sig, err := hex.DecodeString(e.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrBadSignature, err)
	}
	digest, err := e.SigningHash()
	if err != nil {
		return nil, err
	}
	if !crypto.VerifySignature(digest[:], sig, pub) {
		return nil, ErrBadSignature
	}
	return pub, nil
}
