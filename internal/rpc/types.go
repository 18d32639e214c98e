package rpc

import (
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeUnauthorized   = -32001
	CodePrecondition   = -32002
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorData carries the stable kind of a contract or host failure.
type ErrorData struct {
	Kind string `json:"kind"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AccountParam is used by endpoints that take a single account.
type AccountParam struct {
	AccountID types.AccountID `json:"account_id"`
}

// TokenParam is used by nft_token.
type TokenParam struct {
	TokenID types.TokenID `json:"token_id"`
}

// PageParam is used by nft_tokens.
type PageParam struct {
	FromIndex uint64 `json:"from_index"`
	Limit     uint64 `json:"limit"`
}

// OwnerPageParam is used by nft_tokensForOwner.
type OwnerPageParam struct {
	AccountID types.AccountID `json:"account_id"`
	FromIndex uint64          `json:"from_index"`
	Limit     uint64          `json:"limit"`
}

// ── Result types ────────────────────────────────────────────────────────

// CallResult is returned by contract_call.
type CallResult struct {
	Caller types.AccountID `json:"caller"`
	Method string          `json:"method"`
	Nonce  uint64          `json:"nonce"`
	Result interface{}     `json:"result,omitempty"`
}

// ReservationsResult is returned by contract_getReservations. A null
// reservations list means the account has no reservation entry.
type ReservationsResult struct {
	AccountID    types.AccountID           `json:"account_id"`
	Reservations []reservation.Reservation `json:"reservations"`
}

// SupplyResult is returned by nft_supplyForOwner and nft_totalSupply.
type SupplyResult struct {
	Supply uint64 `json:"supply"`
}

// BalanceResult is returned by account_getBalance.
type BalanceResult struct {
	AccountID types.AccountID `json:"account_id"`
	Balance   types.Amount    `json:"balance"`
	NEAR      string          `json:"near"`
}

// NonceResult is returned by account_getNonce.
type NonceResult struct {
	AccountID types.AccountID `json:"account_id"`
	Nonce     uint64          `json:"nonce"`
}
