package contract

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// CreateReservation records a claim on tokenID for the caller and pays
// the reservation fee to the fee account.
func (c *Contract) CreateReservation(call CallContext, tokenID types.TokenID) error {
	if call.Deposit.LessThan(MinReservationDeposit) {
		return fmt.Errorf("%w: attached %s yocto, need %s", ErrInsufficientDeposit, call.Deposit, MinReservationDeposit)
	}
	minted, err := c.ledger.Has(tokenID)
	if err != nil {
		return err
	}
	if minted {
		return fmt.Errorf("%w: %s", ErrTokenAlreadyExists, tokenID)
	}
	dup, err := c.reservations.Contains(call.Caller, tokenID)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: %s already reserved %s", ErrDuplicateReservation, call.Caller, tokenID)
	}

	r := reservation.Reservation{TokenID: tokenID, ReservationTime: call.Timestamp}
	if err := c.reservations.Append(call.Caller, r); err != nil {
		return err
	}
	fee, err := c.FeeAccount()
	if err != nil {
		return err
	}
	if _, err := c.escrow.ScheduleTransfer(fee, ReservationFee, "reservation fee "+string(tokenID)); err != nil {
		return err
	}

	c.logger.Debug().Str("token_id", string(tokenID)).Msg("Reservation created")
	return nil
}

// GetReservations returns the account's reservations. The bool is false
// when the account has none.
func (c *Contract) GetReservations(account types.AccountID) ([]reservation.Reservation, bool, error) {
	return c.reservations.Get(account)
}

// CompleteReservation mints the reserved token to account and removes the
// reservation. Only the contract owner may call it. With sequence
// numbering on, the title becomes "<title> #<N>".
func (c *Contract) CompleteReservation(call CallContext, account types.AccountID, tokenID types.TokenID, meta ledger.TokenMetadata) (*ledger.JSONToken, error) {
	if err := c.requireOwner(call); err != nil {
		return nil, err
	}
	idx, found, err := c.reservations.IndexOf(account, tokenID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s for %s", ErrReservationNotFound, tokenID, account)
	}

	seq, numbered, err := nextCounter(c.db, keySeq)
	if err != nil {
		return nil, err
	}
	if numbered {
		if meta.Title == nil {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidMetadata)
		}
		title := fmt.Sprintf("%s #%d", *meta.Title, seq)
		meta.Title = &title
	}

	owner, err := c.OwnerID()
	if err != nil {
		return nil, err
	}
	royalty := map[types.AccountID]uint32{owner: RoyaltyPercent}

	tok, err := c.ledger.Mint(tokenID, &meta, account, royalty)
	if errors.Is(err, ledger.ErrTokenExists) {
		return nil, fmt.Errorf("%w: %s", ErrTokenAlreadyExists, tokenID)
	}
	if errors.Is(err, ledger.ErrInvalidMetadata) || errors.Is(err, ledger.ErrInvalidHash) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	if err != nil {
		return nil, err
	}
	if numbered {
		if err := putCounter(c.db, keySeq, seq); err != nil {
			return nil, err
		}
	}
	if _, err := c.reservations.SwapRemove(account, idx); err != nil {
		return nil, err
	}

	c.logger.Info().Str("holder", string(account)).Str("token_id", string(tokenID)).
		Uint32("seq", seq).Msg("Reservation completed")
	return tok, nil
}

// DelNFT burns the caller's token and refunds the buy-back price.
func (c *Contract) DelNFT(call CallContext, tokenID types.TokenID) error {
	_, ok, err := c.ledger.Metadata(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, tokenID)
	}
	owner, ok, err := c.ledger.Owner(tokenID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s has metadata but no owner record", ErrTokenNotFound, tokenID)
	}
	if owner != call.Caller {
		return fmt.Errorf("%w: %s", ErrNotOwner, tokenID)
	}
	indexed, err := c.ledger.OwnerIndexContains(call.Caller, tokenID)
	if err != nil {
		return err
	}
	if !indexed {
		return fmt.Errorf("%w: %s missing from owner index", ErrTokenNotFound, tokenID)
	}

	if err := c.ledger.RemoveMetadata(tokenID); err != nil {
		return err
	}
	if err := c.ledger.RemoveToken(tokenID); err != nil {
		return err
	}
	if err := c.ledger.RemoveFromOwnerIndex(call.Caller, tokenID); err != nil {
		return err
	}
	burned, _, err := nextCounter(c.db, keyBurned)
	if err != nil {
		return err
	}
	if err := putCounter(c.db, keyBurned, burned); err != nil {
		return err
	}
	if _, err := c.escrow.ScheduleTransfer(call.Caller, BurnRefund, "burn refund "+string(tokenID)); err != nil {
		return err
	}

	c.logger.Info().Str("token_id", string(tokenID)).
		Uint32("burned", burned).Msg("Token burned")
	return nil
}

// DelReservations clears every reservation of account. Only the contract
// owner may call it; clearing an account without reservations succeeds.
func (c *Contract) DelReservations(call CallContext, account types.AccountID) error {
	if err := c.requireOwner(call); err != nil {
		return err
	}
	if err := c.reservations.Delete(account); err != nil {
		return err
	}
	c.logger.Info().Str("holder", string(account)).Msg("Reservations cleared")
	return nil
}
