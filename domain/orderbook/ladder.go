package orderbook

import (
	rbt "github.com/emirpasic/gods/trees/redblacktree"
)

// ladder is one side of the book: an ordered map from Price to
// *PriceLevel backed by a red-black tree. The comparator fixes the
// iteration direction so best() is always the tree minimum — highest
// price for bids, lowest for asks — and walk() visits levels
// best-first.
type ladder struct {
	tree *rbt.Tree
}

func newBidLadder() *ladder {
	return &ladder{tree: rbt.NewWith(bidComparator)}
}

func newAskLadder() *ladder {
	return &ladder{tree: rbt.NewWith(askComparator)}
}

func (l *ladder) get(p Price) *PriceLevel {
	if v, ok := l.tree.Get(p); ok {
		return v.(*PriceLevel)
	}
	return nil
}

// upsert returns the level at p, creating it when absent.
func (l *ladder) upsert(p Price) *PriceLevel {
	if v, ok := l.tree.Get(p); ok {
		return v.(*PriceLevel)
	}
	lvl := &PriceLevel{Price: p}
	l.tree.Put(p, lvl)
	return lvl
}

func (l *ladder) remove(p Price) {
	l.tree.Remove(p)
}

// best returns the first level in priority order, or nil when empty.
func (l *ladder) best() *PriceLevel {
	n := l.tree.Left()
	if n == nil {
		return nil
	}
	return n.Value.(*PriceLevel)
}

func (l *ladder) len() int { return l.tree.Size() }

// walk visits levels best-first until fn returns false.
func (l *ladder) walk(fn func(*PriceLevel) bool) {
	it := l.tree.Iterator()
	for it.Next() {
		if !fn(it.Value().(*PriceLevel)) {
			return
		}
	}
}

// bidComparator orders prices descending: the highest bid comes first.
func bidComparator(a, b interface{}) int {
	pa, pb := a.(Price), b.(Price)
	switch {
	case pa > pb:
		return -1
	case pa < pb:
		return 1
	default:
		return 0
	}
}

// askComparator orders prices ascending: the lowest ask comes first.
func askComparator(a, b interface{}) int {
	pa, pb := a.(Price), b.(Price)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}
