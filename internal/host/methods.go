package host

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// Callable contract methods.
const (
	MethodCreateReservation   = "create_reservation"
	MethodCompleteReservation = "complete_reservation"
	MethodDelNFT              = "del_nft"
	MethodDelReservations     = "del_reservations"
	MethodSetOwnerID          = "set_owner_id"
)

// CreateReservationArgs are the arguments of create_reservation.
type CreateReservationArgs struct {
	TokenID types.TokenID `json:"token_id"`
}

// CompleteReservationArgs are the arguments of complete_reservation.
type CompleteReservationArgs struct {
	AccountID types.AccountID      `json:"account_id"`
	TokenID   types.TokenID        `json:"token_id"`
	Metadata  ledger.TokenMetadata `json:"metadata"`
}

// Validate checks the token id.
func (a CreateReservationArgs) Validate() error {
	return a.TokenID.Validate()
}

// Validate checks the account and token ids.
func (a CompleteReservationArgs) Validate() error {
	if err := a.AccountID.Validate(); err != nil {
		return err
	}
	return a.TokenID.Validate()
}

// DelNFTArgs are the arguments of del_nft.
type DelNFTArgs struct {
	TokenID types.TokenID `json:"token_id"`
}

// Validate checks the token id.
func (a DelNFTArgs) Validate() error {
	return a.TokenID.Validate()
}

// DelReservationsArgs are the arguments of del_reservations.
type DelReservationsArgs struct {
	AccountID types.AccountID `json:"account_id"`
}

// Validate checks the account id.
func (a DelReservationsArgs) Validate() error {
	return a.AccountID.Validate()
}

// SetOwnerIDArgs are the arguments of set_owner_id.
type SetOwnerIDArgs struct {
	NewOwnerID types.AccountID `json:"new_owner_id"`
}

// Validate checks the new owner id.
func (a SetOwnerIDArgs) Validate() error {
	return a.NewOwnerID.Validate()
}

type method struct {
	payable bool
	run     func(c *contract.Contract, call contract.CallContext, args json.RawMessage) (interface{}, error)
}

var methods = map[string]method{
	MethodCreateReservation: {
		payable: true,
		run: func(c *contract.Contract, call contract.CallContext, raw json.RawMessage) (interface{}, error) {
			var args CreateReservationArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return nil, c.CreateReservation(call, args.TokenID)
		},
	},
	MethodCompleteReservation: {
		payable: true,
		run: func(c *contract.Contract, call contract.CallContext, raw json.RawMessage) (interface{}, error) {
			var args CompleteReservationArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			tok, err := c.CompleteReservation(call, args.AccountID, args.TokenID, args.Metadata)
			if err != nil {
				return nil, err
			}
			return tok, nil
		},
	},
	MethodDelNFT: {
		run: func(c *contract.Contract, call contract.CallContext, raw json.RawMessage) (interface{}, error) {
			var args DelNFTArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return nil, c.DelNFT(call, args.TokenID)
		},
	},
	MethodDelReservations: {
		run: func(c *contract.Contract, call contract.CallContext, raw json.RawMessage) (interface{}, error) {
			var args DelReservationsArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return nil, c.DelReservations(call, args.AccountID)
		},
	},
	MethodSetOwnerID: {
		run: func(c *contract.Contract, call contract.CallContext, raw json.RawMessage) (interface{}, error) {
			var args SetOwnerIDArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			owner, err := c.SetOwnerID(call, args.NewOwnerID)
			if err != nil {
				return nil, err
			}
			return owner, nil
		},
	},
}

// decodeArgs unmarshals call args and checks the ids they carry. A
// failure wraps ErrInvalidArgs and the id's own error.
func decodeArgs(raw json.RawMessage, v interface{ Validate() error }) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgs, err)
	}
	return nil
}
