// Package ledger provides the asset ledgers the pool trades against: an
// ERC-20 style token with an optional transfer tax and the chain's native
// asset with receiver hooks. Every write is recorded in a journal so a failed
// operation can be rolled back.
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/nulln0ne/spacelp/internal/journal"
)

// amounts is a journaled map of non-negative amounts. Missing keys read as
// zero.
type amounts[K comparable] struct {
	j *journal.Journal
	m map[K]*uint256.Int
}

func newAmounts[K comparable](j *journal.Journal) *amounts[K] {
	return &amounts[K]{j: j, m: make(map[K]*uint256.Int)}
}

// get returns a copy of the amount stored under k.
func (a *amounts[K]) get(k K) *uint256.Int {
	if v, ok := a.m[k]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (a *amounts[K]) set(k K, v *uint256.Int) {
	prev, existed := a.m[k]
	a.j.Record(func() {
		if existed {
			a.m[k] = prev
		} else {
			delete(a.m, k)
		}
	})
	if v.IsZero() {
		delete(a.m, k)
		return
	}
	a.m[k] = v.Clone()
}

func (a *amounts[K]) add(k K, v *uint256.Int) error {
	sum, overflow := new(uint256.Int).AddOverflow(a.get(k), v)
	if overflow {
		return ErrOverflow
	}
	a.set(k, sum)
	return nil
}

func (a *amounts[K]) sub(k K, v *uint256.Int, insufficient error) error {
	cur := a.get(k)
	if cur.Lt(v) {
		return insufficient
	}
	a.set(k, cur.Sub(cur, v))
	return nil
}

func (a *amounts[K]) each(fn func(k K, v *uint256.Int)) {
	for k, v := range a.m {
		fn(k, v.Clone())
	}
}
