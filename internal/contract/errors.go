package contract

import "errors"

// Contract errors. Every failure aborts the whole call.
var (
	ErrInsufficientDeposit  = errors.New("deposit is not sufficient")
	ErrTokenAlreadyExists   = errors.New("token already exists")
	ErrDuplicateReservation = errors.New("reservation already exists")
	ErrReservationNotFound  = errors.New("reservation does not exist")
	ErrUnauthorized         = errors.New("only the contract owner may call this")
	ErrTokenNotFound        = errors.New("token does not exist")
	ErrNotOwner             = errors.New("token is owned by another account")
	ErrInvalidMetadata      = errors.New("invalid metadata")
	ErrNotInitialized       = errors.New("contract not initialized")
	ErrAlreadyInitialized   = errors.New("contract already initialized")
	ErrCounterOverflow      = errors.New("sequence counter overflow")
)
