package rpcclient

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/host"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/internal/rpc"
	"github.com/Klingon-tech/artdressup/pkg/crypto"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// Submit sends a signed envelope through contract_call.
func (c *Client) Submit(env *host.Envelope) (*rpc.CallResult, error) {
	var res rpc.CallResult
	if err := c.Call("contract_call", env, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Invoke signs a call as caller with key, using the next nonce, and
// submits it. args is encoded as JSON.
func (c *Client) Invoke(key *crypto.PrivateKey, caller types.AccountID, method string, args interface{}, deposit types.Amount) (*rpc.CallResult, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode args: %w", err)
	}
	nonce, err := c.Nonce(caller)
	if err != nil {
		return nil, err
	}
	env := &host.Envelope{
		Caller:  caller,
		Method:  method,
		Args:    raw,
		Deposit: deposit,
		Nonce:   nonce + 1,
	}
	if err := env.Sign(key); err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	return c.Submit(env)
}

// CreateReservation reserves tokenID for caller.
func (c *Client) CreateReservation(key *crypto.PrivateKey, caller types.AccountID, tokenID types.TokenID, deposit types.Amount) error {
	_, err := c.Invoke(key, caller, host.MethodCreateReservation, host.CreateReservationArgs{TokenID: tokenID}, deposit)
	return err
}

// CompleteReservation mints a reserved token to account. Only the
// contract owner may call it.
func (c *Client) CompleteReservation(key *crypto.PrivateKey, caller, account types.AccountID, tokenID types.TokenID, meta ledger.TokenMetadata, deposit types.Amount) (*ledger.JSONToken, error) {
	res, err := c.Invoke(key, caller, host.MethodCompleteReservation, host.CompleteReservationArgs{
		AccountID: account,
		TokenID:   tokenID,
		Metadata:  meta,
	}, deposit)
	if err != nil {
		return nil, err
	}
	var tok ledger.JSONToken
	if err := remarshal(res.Result, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// DelNFT burns a token owned by caller.
func (c *Client) DelNFT(key *crypto.PrivateKey, caller types.AccountID, tokenID types.TokenID) error {
	_, err := c.Invoke(key, caller, host.MethodDelNFT, host.DelNFTArgs{TokenID: tokenID}, types.Zero)
	return err
}

// DelReservations clears every reservation of account.
func (c *Client) DelReservations(key *crypto.PrivateKey, caller, account types.AccountID) error {
	_, err := c.Invoke(key, caller, host.MethodDelReservations, host.DelReservationsArgs{AccountID: account}, types.Zero)
	return err
}

// SetOwnerID transfers contract ownership.
func (c *Client) SetOwnerID(key *crypto.PrivateKey, caller, newOwner types.AccountID) (types.AccountID, error) {
	res, err := c.Invoke(key, caller, host.MethodSetOwnerID, host.SetOwnerIDArgs{NewOwnerID: newOwner}, types.Zero)
	if err != nil {
		return "", err
	}
	var owner types.AccountID
	if err := remarshal(res.Result, &owner); err != nil {
		return "", err
	}
	return owner, nil
}

// GetReservations returns the reservations of account. The bool is false
// when the account has no reservation entry.
func (c *Client) GetReservations(account types.AccountID) ([]reservation.Reservation, bool, error) {
	var res rpc.ReservationsResult
	if err := c.Call("contract_getReservations", rpc.AccountParam{AccountID: account}, &res); err != nil {
		return nil, false, err
	}
	return res.Reservations, res.Reservations != nil, nil
}

// OwnerID returns the contract owner.
func (c *Client) OwnerID() (types.AccountID, error) {
	var owner types.AccountID
	err := c.Call("contract_getOwnerId", nil, &owner)
	return owner, err
}

// Counters returns the mint sequence and burn counters.
func (c *Client) Counters() (*contract.Counters, error) {
	var counters contract.Counters
	if err := c.Call("contract_getCounters", nil, &counters); err != nil {
		return nil, err
	}
	return &counters, nil
}

// Metadata returns the collection metadata.
func (c *Client) Metadata() (*ledger.ContractMetadata, error) {
	var meta ledger.ContractMetadata
	if err := c.Call("nft_metadata", nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Token returns a minted token.
func (c *Client) Token(id types.TokenID) (*ledger.JSONToken, error) {
	var tok ledger.JSONToken
	if err := c.Call("nft_token", rpc.TokenParam{TokenID: id}, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Tokens lists minted tokens.
func (c *Client) Tokens(from, limit uint64) ([]*ledger.JSONToken, error) {
	var toks []*ledger.JSONToken
	err := c.Call("nft_tokens", rpc.PageParam{FromIndex: from, Limit: limit}, &toks)
	return toks, err
}

// TokensForOwner lists the tokens held by owner.
func (c *Client) TokensForOwner(owner types.AccountID, from, limit uint64) ([]*ledger.JSONToken, error) {
	var toks []*ledger.JSONToken
	err := c.Call("nft_tokensForOwner", rpc.OwnerPageParam{AccountID: owner, FromIndex: from, Limit: limit}, &toks)
	return toks, err
}

// SupplyForOwner counts the tokens held by owner.
func (c *Client) SupplyForOwner(owner types.AccountID) (uint64, error) {
	var res rpc.SupplyResult
	err := c.Call("nft_supplyForOwner", rpc.AccountParam{AccountID: owner}, &res)
	return res.Supply, err
}

// TotalSupply counts all minted tokens.
func (c *Client) TotalSupply() (uint64, error) {
	var res rpc.SupplyResult
	err := c.Call("nft_totalSupply", nil, &res)
	return res.Supply, err
}

// Balance returns the balance of account.
func (c *Client) Balance(account types.AccountID) (*rpc.BalanceResult, error) {
	var res rpc.BalanceResult
	if err := c.Call("account_getBalance", rpc.AccountParam{AccountID: account}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Nonce returns the last nonce used by account.
func (c *Client) Nonce(account types.AccountID) (uint64, error) {
	var res rpc.NonceResult
	err := c.Call("account_getNonce", rpc.AccountParam{AccountID: account}, &res)
	return res.Nonce, err
}

func remarshal(v, target interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
