package rpc

import (
	"errors"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/escrow"
	"github.com/Klingon-tech/artdressup/internal/host"
	"github.com/Klingon-tech/artdressup/internal/storage"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// errorKinds maps failures to a JSON-RPC code and a stable kind string.
// Order matters only where one sentinel wraps another.
var errorKinds = []struct {
	err  error
	code int
	kind string
}{
	{contract.ErrReservationNotFound, CodeNotFound, "reservation_not_found"},
	{contract.ErrTokenNotFound, CodeNotFound, "token_not_found"},
	{storage.ErrNotFound, CodeNotFound, "not_found"},
	{contract.ErrUnauthorized, CodeUnauthorized, "unauthorized"},
	{contract.ErrNotOwner, CodeUnauthorized, "not_owner"},
	{host.ErrBadSignature, CodeUnauthorized, "bad_signature"},
	{host.ErrUnknownKey, CodeUnauthorized, "unknown_key"},
	{contract.ErrInsufficientDeposit, CodePrecondition, "insufficient_deposit"},
	{contract.ErrTokenAlreadyExists, CodePrecondition, "token_already_exists"},
	{contract.ErrDuplicateReservation, CodePrecondition, "duplicate_reservation"},
	{contract.ErrNotInitialized, CodePrecondition, "not_initialized"},
	{contract.ErrCounterOverflow, CodePrecondition, "counter_overflow"},
	{escrow.ErrInsufficientBalance, CodePrecondition, "insufficient_balance"},
	{host.ErrBadNonce, CodePrecondition, "bad_nonce"},
	{host.ErrNotPayable, CodePrecondition, "not_payable"},
	{contract.ErrInvalidMetadata, CodeInvalidParams, "invalid_metadata"},
	{host.ErrInvalidArgs, CodeInvalidParams, "invalid_args"},
	{host.ErrUnknownMethod, CodeInvalidParams, "unknown_method"},
	{types.ErrInvalidAccountID, CodeInvalidParams, "invalid_account_id"},
	{types.ErrInvalidTokenID, CodeInvalidParams, "invalid_token_id"},
}

// toError converts an error from the host or contract into a JSON-RPC
// error. Unclassified errors become internal errors.
func toError(err error) *Error {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return &Error{Code: k.code, Message: err.Error(), Data: &ErrorData{Kind: k.kind}}
		}
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}
