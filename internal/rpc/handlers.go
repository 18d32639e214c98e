package rpc

import (
	"github.com/Klingon-tech/artdressup/internal/contract"
	"github.com/Klingon-tech/artdressup/internal/host"
	"github.com/Klingon-tech/artdressup/internal/ledger"
	"github.com/Klingon-tech/artdressup/internal/reservation"
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// ── Contract endpoints ──────────────────────────────────────────────────

func (s *Server) handleContractCall(req *Request) (interface{}, *Error) {
	var env host.Envelope
	if err := parseParams(req, &env); err != nil {
		return nil, err
	}
	if env.Method == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "method is required"}
	}
	if env.Signature == "" || env.PublicKey == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "public_key and signature are required"}
	}

	result, err := s.host.Submit(&env)
	if err != nil {
		return nil, toError(err)
	}
	return &CallResult{
		Caller: env.Caller,
		Method: env.Method,
		Nonce:  env.Nonce,
		Result: result,
	}, nil
}

func (s *Server) handleGetReservations(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.AccountID.Validate(); err != nil {
		return nil, toError(err)
	}

	var list []reservation.Reservation
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		list, _, err = c.GetReservations(params.AccountID)
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return &ReservationsResult{AccountID: params.AccountID, Reservations: list}, nil
}

func (s *Server) handleGetOwnerID(_ *Request) (interface{}, *Error) {
	var owner types.AccountID
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		owner, err = c.OwnerID()
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return owner, nil
}

func (s *Server) handleGetCounters(_ *Request) (interface{}, *Error) {
	var counters contract.Counters
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		counters, err = c.Counters()
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return &counters, nil
}

// ── NFT endpoints ───────────────────────────────────────────────────────

func (s *Server) handleNFTMetadata(_ *Request) (interface{}, *Error) {
	var meta *ledger.ContractMetadata
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		meta, err = c.ContractMetadata()
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return meta, nil
}

func (s *Server) handleNFTToken(req *Request) (interface{}, *Error) {
	var params TokenParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.TokenID.Validate(); err != nil {
		return nil, toError(err)
	}

	var (
		tok   *ledger.JSONToken
		found bool
	)
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		tok, found, err = c.Token(params.TokenID)
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	if !found {
		return nil, toError(contract.ErrTokenNotFound)
	}
	return tok, nil
}

func (s *Server) handleNFTTokens(req *Request) (interface{}, *Error) {
	var params PageParam
	if req.Params != nil {
		if err := parseParams(req, &params); err != nil {
			return nil, err
		}
	}

	var toks []*ledger.JSONToken
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		toks, err = c.Tokens(params.FromIndex, params.Limit)
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return toks, nil
}

func (s *Server) handleNFTTokensForOwner(req *Request) (interface{}, *Error) {
	var params OwnerPageParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.AccountID.Validate(); err != nil {
		return nil, toError(err)
	}

	var toks []*ledger.JSONToken
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		toks, err = c.TokensForOwner(params.AccountID, params.FromIndex, params.Limit)
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return toks, nil
}

func (s *Server) handleNFTSupplyForOwner(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.AccountID.Validate(); err != nil {
		return nil, toError(err)
	}

	var n uint64
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		n, err = c.SupplyForOwner(params.AccountID)
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return &SupplyResult{Supply: n}, nil
}

func (s *Server) handleNFTTotalSupply(_ *Request) (interface{}, *Error) {
	var n uint64
	err := s.host.View(func(c *contract.Contract) error {
		var err error
		n, err = c.TotalSupply()
		return err
	})
	if err != nil {
		return nil, toError(err)
	}
	return &SupplyResult{Supply: n}, nil
}

// ── Account endpoints ───────────────────────────────────────────────────

func (s *Server) handleAccountGetBalance(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.AccountID.Validate(); err != nil {
		return nil, toError(err)
	}

	bal, err := s.host.Balance(params.AccountID)
	if err != nil {
		return nil, toError(err)
	}
	return &BalanceResult{AccountID: params.AccountID, Balance: bal, NEAR: bal.NEARString()}, nil
}

func (s *Server) handleAccountGetNonce(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if err := params.AccountID.Validate(); err != nil {
		return nil, toError(err)
	}

	nonce, err := s.host.Nonce(params.AccountID)
	if err != nil {
		return nil, toError(err)
	}
	return &NonceResult{AccountID: params.AccountID, Nonce: nonce}, nil
}
