package ledger

import (
	"github.com/Klingon-tech/artdressup/pkg/types"
)

// DefaultPageLimit caps enumeration views when no limit is given.
const DefaultPageLimit = 50

// Token returns the full view of a token.
func (l *Ledger) Token(id types.TokenID) (*JSONToken, bool, error) {
	var tok Token
	ok, err := l.getJSON(tokenKey(id), &tok)
	if err != nil || !ok {
		return nil, ok, err
	}
	meta, _, err := l.Metadata(id)
	if err != nil {
		return nil, false, err
	}
	return &JSONToken{TokenID: id, OwnerID: tok.OwnerID, Metadata: meta, Royalty: tok.Royalty}, true, nil
}

// TotalSupply returns the number of minted tokens.
func (l *Ledger) TotalSupply() (uint64, error) {
	var n uint64
	err := l.db.ForEach(prefixToken, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// SupplyForOwner returns the number of tokens held by owner.
func (l *Ledger) SupplyForOwner(owner types.AccountID) (uint64, error) {
	var n uint64
	err := l.db.ForEach(ownerPrefix(owner), func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// Tokens lists minted tokens in id order starting at index from.
// A zero limit means DefaultPageLimit.
func (l *Ledger) Tokens(from, limit uint64) ([]*JSONToken, error) {
	ids, err := l.pageIDs(prefixToken, from, limit)
	if err != nil {
		return nil, err
	}
	return l.tokensByID(ids)
}

// TokensForOwner lists owner's tokens in id order starting at index from.
func (l *Ledger) TokensForOwner(owner types.AccountID, from, limit uint64) ([]*JSONToken, error) {
	ids, err := l.pageIDs(ownerPrefix(owner), from, limit)
	if err != nil {
		return nil, err
	}
	return l.tokensByID(ids)
}

func (l *Ledger) pageIDs(prefix []byte, from, limit uint64) ([]types.TokenID, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	var (
		ids []types.TokenID
		idx uint64
	)
	err := l.db.ForEach(prefix, func(key, _ []byte) error {
		if idx >= from && uint64(len(ids)) < limit {
			ids = append(ids, types.TokenID(key[len(prefix):]))
		}
		idx++
		return nil
	})
	return ids, err
}

func (l *Ledger) tokensByID(ids []types.TokenID) ([]*JSONToken, error) {
	out := make([]*JSONToken, 0, len(ids))
	for _, id := range ids {
		tok, ok, err := l.Token(id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, tok)
		}
	}
	return out, nil
}
