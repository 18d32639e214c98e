package contract

import (
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// ContractMetadata returns the collection metadata.
func (c *Contract) ContractMetadata() (*ledger.ContractMetadata, error) {
	return c.ledger.ContractMetadata()
}

// Token returns a minted token.
func (c *Contract) Token(id types.TokenID) (*ledger.JSONToken, bool, error) {
	return c.ledger.Token(id)
}

// Tokens lists minted tokens.
func (c *Contract) Tokens(from, limit uint64) ([]*ledger.JSONToken, error) {
	return c.ledger.Tokens(from, limit)
}

// TokensForOwner lists the tokens held by owner.
func (c *Contract) TokensForOwner(owner types.AccountID, from, limit uint64) ([]*ledger.JSONToken, error) {
	return c.ledger.TokensForOwner(owner, from, limit)
}

// SupplyForOwner counts the tokens held by owner.
func (c *Contract) SupplyForOwner(owner types.AccountID) (uint64, error) {
	return c.ledger.SupplyForOwner(owner)
}

// TotalSupply counts all minted tokens.
func (c *Contract) TotalSupply() (uint64, error) {
	return c.ledger.TotalSupply()
}
