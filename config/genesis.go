package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// =============================================================================
// Testnet Identity
//
// Derived from the well-known BIP-39 test mnemonic (DO NOT use on mainnet):
//
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon abandon
//	abandon abandon abandon abandon abandon abandon abandon art
//
// Derivation path: m/44'/8888'/0'/0/0 (no passphrase)
// =============================================================================

const (
	// TestnetMnemonic is the well-known seed phrase for the testnet operator.
	TestnetMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"

	// TestnetOperatorPubKey is the compressed public key (hex) derived from TestnetMnemonic.
	TestnetOperatorPubKey = "030bef68f8657df88098a0546da1712c88b459788bea1a6bbe964004166a25144f"

	// TestnetOperatorPrivKey is the private key (hex) derived from TestnetMnemonic.
	TestnetOperatorPrivKey = "1f0717e6e34acc6721021f4dfed54558ec8452452b6195545d06dd348b220091"

	// TestnetImplicitAccount is the implicit account of TestnetOperatorPubKey.
	// Account = hex(BLAKE3(pubkey)[:20])
	TestnetImplicitAccount = "8f3a44b8056cafec368dea0cbe0ad1d9bc3f4305"
)

// ContractGenesis holds the one-time contract initialization.
type ContractGenesis struct {
	// ContractID is the account holding deposits and paying transfers.
	ContractID string `json:"contract_id"`
	// Owner is the operator allowed to complete and clear reservations.
	Owner string `json:"owner_id"`
	// FeeAccount receives reservation fees.
	FeeAccount string `json:"fee_account,omitempty"`
	// SequenceNumbering appends "#N" to minted titles when set.
	SequenceNumbering bool `json:"sequence_numbering"`

	Metadata *ledger.ContractMetadata `json:"metadata,omitempty"`

	// Initial balances (account -> yocto).
	Alloc map[string]types.Amount `json:"alloc"`

	// Public keys (hex, compressed) allowed to sign for named accounts.
	AccessKeys map[string][]string `json:"access_keys,omitempty"`
}

// MainnetContractGenesis returns the mainnet contract genesis.
func MainnetContractGenesis() *ContractGenesis {
	icon := "https://cdn.artdressup.com/icon.png"
	baseURI := "https://cdn.artdressup.com/nft/"
	return &ContractGenesis{
		ContractID:        "artdressup.near",
		Owner:             "artdressup.near",
		FeeAccount:        "dev.artdressup.near",
		SequenceNumbering: true,
		Metadata: &ledger.ContractMetadata{
			Spec:    ledger.MetadataSpec,
			Name:    "Art Dress Up",
			Symbol:  "ADU",
			Icon:    &icon,
			BaseURI: &baseURI,
		},
		Alloc:      map[string]types.Amount{},
		AccessKeys: map[string][]string{},
	}
}

// TestnetContractGenesis returns the testnet contract genesis. The
// operator is the testnet mnemonic's key, bound to owner.artdressup.testnet.
func TestnetContractGenesis() *ContractGenesis {
	g := MainnetContractGenesis()
	g.ContractID = "artdressup.testnet"
	g.Owner = "owner.artdressup.testnet"
	g.FeeAccount = "dev.artdressup.testnet"
	g.Alloc = map[string]types.Amount{
		TestnetImplicitAccount:     types.NEAR(1_000),
		"owner.artdressup.testnet": types.NEAR(1_000),
		"artdressup.testnet":       types.NEAR(100),
	}
	g.AccessKeys = map[string][]string{
		"owner.artdressup.testnet": {TestnetOperatorPubKey},
	}
	return g
}

// ContractGenesisFor returns the contract genesis for the given network.
func ContractGenesisFor(network NetworkType) *ContractGenesis {
	switch network {
	case Testnet:
		return TestnetContractGenesis()
	default:
		return MainnetContractGenesis()
	}
}

// LoadContractGenesis loads a contract genesis from a file. A missing
// file yields the network default.
func LoadContractGenesis(path string, network NetworkType) (*ContractGenesis, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		g := ContractGenesisFor(network)
		return g, g.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("reading contract genesis: %w", err)
	}

	var g ContractGenesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing contract genesis: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid contract genesis: %w", err)
	}
	return &g, nil
}

// Save writes the contract genesis to a file.
func (g *ContractGenesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding contract genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing contract genesis: %w", err)
	}
	return nil
}

// Validate checks that the contract genesis is usable.
func (g *ContractGenesis) Validate() error {
	if err := types.AccountID(g.ContractID).Validate(); err != nil {
		return fmt.Errorf("contract_id: %w", err)
	}
	if err := types.AccountID(g.Owner).Validate(); err != nil {
		return fmt.Errorf("owner_id: %w", err)
	}
	if g.FeeAccount != "" {
		if err := types.AccountID(g.FeeAccount).Validate(); err != nil {
			return fmt.Errorf("fee_account: %w", err)
		}
	}
	if g.Metadata != nil {
		if err := g.Metadata.Validate(); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
	}
	for account, amount := range g.Alloc {
		if err := types.AccountID(account).Validate(); err != nil {
			return fmt.Errorf("alloc: %w", err)
		}
		if amount.IsNegative() {
			return fmt.Errorf("alloc %s: negative amount", account)
		}
	}
	for account, keys := range g.AccessKeys {
		id := types.AccountID(account)
		if err := id.Validate(); err != nil {
			return fmt.Errorf("access_keys: %w", err)
		}
		if id.IsImplicit() {
			return fmt.Errorf("access_keys %s: implicit accounts are bound to their own key", account)
		}
		for _, k := range keys {
			b, err := hex.DecodeString(k)
			if err != nil || len(b) != 33 {
				return fmt.Errorf("access_keys %s: %q must be a 33-byte hex public key", account, k)
			}
		}
	}
	return nil
}

// AllocAmounts returns the allocations keyed by account id.
func (g *ContractGenesis) AllocAmounts() map[types.AccountID]types.Amount {
	out := make(map[types.AccountID]types.Amount, len(g.Alloc))
	for account, amount := range g.Alloc {
		out[types.AccountID(account)] = amount
	}
	return out
}

// AccessKeyMap returns the access keys keyed by account id.
func (g *ContractGenesis) AccessKeyMap() map[types.AccountID][]string {
	out := make(map[types.AccountID][]string, len(g.AccessKeys))
	for account, keys := range g.AccessKeys {
		out[types.AccountID(account)] = keys
	}
	return out
}
