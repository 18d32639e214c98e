package ledger

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Metadata validation errors.
var (
	ErrInvalidMetadata = errors.New("invalid metadata")
	ErrInvalidHash     = errors.New("invalid hash: must be base64 of 32 bytes")
)

// MetadataSpec is the metadata standard version reported by the contract.
const MetadataSpec = "nft-1.0.0"

// TokenMetadata describes a single minted token. Optional fields are
// pointers so absent values round-trip as null.
type TokenMetadata struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Media         *string `json:"media"`
	MediaHash     *string `json:"media_hash"`
	Copies        *uint64 `json:"copies"`
	IssuedAt      *string `json:"issued_at"`
	ExpiresAt     *string `json:"expires_at"`
	StartsAt      *string `json:"starts_at"`
	UpdatedAt     *string `json:"updated_at"`
	Extra         *string `json:"extra"`
	Reference     *string `json:"reference"`
	ReferenceHash *string `json:"reference_hash"`
}

// Validate checks the hash fields and that media and reference hashes
// only appear with their targets.
func (m *TokenMetadata) Validate() error {
	if m.MediaHash != nil {
		if m.Media == nil {
			return fmt.Errorf("%w: media_hash without media", ErrInvalidMetadata)
		}
		if err := checkHash(*m.MediaHash); err != nil {
			return fmt.Errorf("media_hash: %w", err)
		}
	}
	if m.ReferenceHash != nil {
		if m.Reference == nil {
			return fmt.Errorf("%w: reference_hash without reference", ErrInvalidMetadata)
		}
		if err := checkHash(*m.ReferenceHash); err != nil {
			return fmt.Errorf("reference_hash: %w", err)
		}
	}
	if m.Copies != nil && *m.Copies == 0 {
		return fmt.Errorf("%w: copies must be positive", ErrInvalidMetadata)
	}
	return nil
}

// ContractMetadata describes the collection as a whole.
type ContractMetadata struct {
	Spec          string  `json:"spec"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Icon          *string `json:"icon"`
	BaseURI       *string `json:"base_uri"`
	Reference     *string `json:"reference"`
	ReferenceHash *string `json:"reference_hash"`
}

// Validate checks the required contract metadata fields.
func (m *ContractMetadata) Validate() error {
	if m.Spec == "" {
		return fmt.Errorf("%w: spec is required", ErrInvalidMetadata)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMetadata)
	}
	if m.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidMetadata)
	}
	if m.ReferenceHash != nil {
		if m.Reference == nil {
			return fmt.Errorf("%w: reference_hash without reference", ErrInvalidMetadata)
		}
		if err := checkHash(*m.ReferenceHash); err != nil {
			return fmt.Errorf("reference_hash: %w", err)
		}
	}
	return nil
}

func checkHash(s string) error {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(b) != 32 {
		return ErrInvalidHash
	}
	return nil
}
