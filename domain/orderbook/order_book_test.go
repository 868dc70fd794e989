package orderbook

import (
	"errors"
	"testing"
)

func newTestBook() *OrderBook {
	return NewOrderBook("AAPL")
}

// checkInvariants verifies the structural invariants that must hold at
// every quiescent moment: each level's cached quantity equals the sum
// of its orders' remainders, no level is empty, and the lookup index
// agrees with the ladders.
func checkInvariants(t *testing.T, b *OrderBook) {
	t.Helper()

	resting := 0
	verify := func(side Side) func(*PriceLevel) bool {
		return func(lvl *PriceLevel) bool {
			if lvl.Empty() {
				t.Fatalf("empty level %s left in %s ladder", lvl.Price, side)
			}
			var sum Quantity
			for o := lvl.Front(); o != nil; o = o.Next() {
				sum += o.Remaining()
				resting++
				loc, ok := b.lookup[o.ID]
				if !ok {
					t.Fatalf("resting order %d missing from index", o.ID)
				}
				if loc.order != o || loc.side != o.Side || loc.price != lvl.Price {
					t.Fatalf("index entry for %d disagrees with ladder", o.ID)
				}
			}
			if sum != lvl.TotalQty() {
				t.Fatalf("level %s total=%d, sum of remainders=%d", lvl.Price, lvl.TotalQty(), sum)
			}
			return true
		}
	}
	b.BidsWalk(verify(Buy))
	b.AsksWalk(verify(Sell))

	if resting != b.OrderCount() {
		t.Fatalf("index has %d orders, ladders have %d", b.OrderCount(), resting)
	}
}

// ---------------- End-to-end scenarios ---------------- //

func TestExactMatch(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 100, 150.0))
	trades := b.AddOrder(newLimit(2, Buy, 100, 150.0))

	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Quantity != 100 || tr.Price != PriceFromFloat(150.0) {
		t.Errorf("trade = %d@%s, want 100@150.000000", tr.Quantity, tr.Price)
	}
	if tr.BuyOrderID != 2 || tr.SellOrderID != 1 || tr.Aggressor != Buy {
		t.Errorf("trade ids/aggressor wrong: %+v", tr)
	}
	if !b.Empty() {
		t.Error("book should be empty after exact match")
	}
	checkInvariants(t, b)
}

func TestPriceImprovement(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 100, 150.0))
	trades := b.AddOrder(newLimit(2, Buy, 100, 151.0))

	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	// Prints at the resting price, never the aggressor's.
	if trades[0].Price != PriceFromFloat(150.0) {
		t.Errorf("trade price = %s, want 150.000000", trades[0].Price)
	}
	if !b.Empty() {
		t.Error("book should be empty")
	}
}

func TestMultiLevelSweep(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 50, 150.0))
	b.AddOrder(newLimit(2, Sell, 50, 151.0))
	b.AddOrder(newLimit(3, Sell, 50, 152.0))

	trades := b.AddOrder(newLimit(4, Buy, 120, 152.0))

	want := []struct {
		qty   Quantity
		price float64
	}{{50, 150.0}, {50, 151.0}, {20, 152.0}}

	if len(trades) != len(want) {
		t.Fatalf("got %d trades, want %d", len(trades), len(want))
	}
	for i, w := range want {
		if trades[i].Quantity != w.qty || trades[i].Price != PriceFromFloat(w.price) {
			t.Errorf("trade[%d] = %d@%s, want %d@%v", i, trades[i].Quantity, trades[i].Price, w.qty, w.price)
		}
	}

	if got := b.VolumeAtPrice(Sell, PriceFromFloat(152.0)); got != 30 {
		t.Errorf("residual depth at 152.0 = %d, want 30", got)
	}
	if b.AskLevels() != 1 || b.BidLevels() != 0 {
		t.Errorf("levels: asks=%d bids=%d, want 1/0", b.AskLevels(), b.BidLevels())
	}
	checkInvariants(t, b)
}

func TestPartialFillRests(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 60, 150.0))
	buy := newLimit(2, Buy, 100, 150.0)
	trades := b.AddOrder(buy)

	if len(trades) != 1 || trades[0].Quantity != 60 {
		t.Fatalf("trades = %v", trades)
	}
	if buy.Status != PartiallyFilled || buy.Remaining() != 40 {
		t.Errorf("buy status=%v remaining=%d, want PartiallyFilled/40", buy.Status, buy.Remaining())
	}
	if bid, ok := b.BestBid(); !ok || bid != PriceFromFloat(150.0) {
		t.Errorf("best bid = %v/%v, want 150.0", bid, ok)
	}
	if got := b.VolumeAtPrice(Buy, PriceFromFloat(150.0)); got != 40 {
		t.Errorf("bid depth = %d, want 40", got)
	}
	checkInvariants(t, b)
}

func TestFIFOWithinLevel(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 50, 150.0)) // s1, first in
	b.AddOrder(newLimit(2, Sell, 50, 150.0)) // s2, behind s1

	trades := b.AddOrder(newLimit(3, Buy, 50, 150.0))

	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].SellOrderID != 1 {
		t.Errorf("matched sell id = %d, want 1 (time priority)", trades[0].SellOrderID)
	}
	if got := b.VolumeAtPrice(Sell, PriceFromFloat(150.0)); got != 50 {
		t.Errorf("s2 depth = %d, want 50", got)
	}
	checkInvariants(t, b)
}

func TestMarketOrderOnEmptyBook(t *testing.T) {
	b := newTestBook()

	o := newMarket(1, Buy, 100)
	trades := b.AddOrder(o)

	if len(trades) != 0 {
		t.Fatalf("got %d trades on empty book", len(trades))
	}
	// The unfilled market remainder is discarded, not rested.
	if !b.Empty() || b.OrderCount() != 0 {
		t.Error("market order must not enter the book")
	}
	if o.Remaining() != 100 {
		t.Errorf("remaining = %d, want 100", o.Remaining())
	}
}

func TestMarketOrderSweepsAndDiscards(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 30, 150.0))
	b.AddOrder(newLimit(2, Sell, 30, 155.0))

	o := newMarket(3, Buy, 100)
	trades := b.AddOrder(o)

	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].Price != PriceFromFloat(150.0) || trades[1].Price != PriceFromFloat(155.0) {
		t.Errorf("market order did not walk the ladder: %v", trades)
	}
	if o.Filled != 60 || o.Status != PartiallyFilled {
		t.Errorf("filled=%d status=%v", o.Filled, o.Status)
	}
	if !b.Empty() {
		t.Error("remainder of market order must be discarded")
	}
}

func TestCancelRoundTrip(t *testing.T) {
	b := newTestBook()

	o := newLimit(1, Buy, 100, 150.0)
	b.AddOrder(o)

	if err := b.CancelOrder(1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if o.Status != Cancelled {
		t.Errorf("status = %v, want Cancelled", o.Status)
	}
	if _, ok := b.BestBid(); ok {
		t.Error("best bid should be absent after cancel")
	}
	if b.OrderCount() != 0 || b.BidLevels() != 0 {
		t.Error("book not structurally empty after add+cancel")
	}

	if err := b.CancelOrder(1); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("second cancel: got %v, want ErrOrderNotFound", err)
	}
	checkInvariants(t, b)
}

// ---------------- Properties ---------------- //

func TestRejectedOrderLeavesBookUntouched(t *testing.T) {
	b := newTestBook()
	b.AddOrder(newLimit(1, Sell, 50, 150.0))

	bad := newLimit(2, Buy, 0, 150.0)
	trades := b.AddOrder(bad)

	if bad.Status != Rejected {
		t.Errorf("status = %v, want Rejected", bad.Status)
	}
	if len(trades) != 0 {
		t.Error("rejected order produced trades")
	}
	if b.OrderCount() != 1 || b.AskLevels() != 1 {
		t.Error("rejected order mutated the book")
	}
}

func TestConservation(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 30, 150.0))
	b.AddOrder(newLimit(2, Sell, 45, 150.5))
	b.AddOrder(newLimit(3, Sell, 80, 151.0))

	in := newLimit(4, Buy, 100, 151.0)
	trades := b.AddOrder(in)

	var traded Quantity
	for _, tr := range trades {
		traded += tr.Quantity
	}
	if traded+in.Remaining() != in.Quantity {
		t.Errorf("conservation violated: traded=%d remaining=%d quantity=%d",
			traded, in.Remaining(), in.Quantity)
	}
	checkInvariants(t, b)
}

func TestTradeIDsMonotonic(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 10, 150.0))
	b.AddOrder(newLimit(2, Sell, 10, 151.0))
	trades := b.AddOrder(newLimit(3, Buy, 20, 151.0))

	if len(trades) != 2 {
		t.Fatalf("got %d trades", len(trades))
	}
	if trades[0].ID != 1 || trades[1].ID != 2 {
		t.Errorf("trade ids = %d,%d, want 1,2", trades[0].ID, trades[1].ID)
	}
}

func TestSpread(t *testing.T) {
	b := newTestBook()

	if _, ok := b.Spread(); ok {
		t.Error("spread on empty book should be absent")
	}

	b.AddOrder(newLimit(1, Buy, 10, 149.5))
	if _, ok := b.Spread(); ok {
		t.Error("spread with one side should be absent")
	}

	b.AddOrder(newLimit(2, Sell, 10, 150.25))
	s, ok := b.Spread()
	if !ok || s != PriceFromFloat(0.75) {
		t.Errorf("spread = %v/%v, want 0.75", s, ok)
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	b := newTestBook()
	if err := b.CancelOrder(42); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}

func TestAggressorSellTradeIdentifiers(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Buy, 100, 150.0))
	trades := b.AddOrder(newLimit(2, Sell, 100, 150.0))

	if len(trades) != 1 {
		t.Fatalf("got %d trades", len(trades))
	}
	tr := trades[0]
	// Buy id names the Buy-side order even when the seller aggressed.
	if tr.BuyOrderID != 1 || tr.SellOrderID != 2 || tr.Aggressor != Sell {
		t.Errorf("trade = %+v", tr)
	}
}

func TestSweepThenRestAtOwnPrice(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 50, 150.0))
	in := newLimit(2, Buy, 120, 151.0)
	b.AddOrder(in)

	// 50 filled at 150.0, the remaining 70 rests at the limit 151.0.
	if in.Remaining() != 70 || in.Status != PartiallyFilled {
		t.Fatalf("remaining=%d status=%v", in.Remaining(), in.Status)
	}
	if bid, ok := b.BestBid(); !ok || bid != PriceFromFloat(151.0) {
		t.Errorf("best bid = %v, want 151.0", bid)
	}
	checkInvariants(t, b)
}

func TestInterleavedCancelAndMatch(t *testing.T) {
	b := newTestBook()

	b.AddOrder(newLimit(1, Sell, 50, 150.0))
	b.AddOrder(newLimit(2, Sell, 50, 150.0))
	b.AddOrder(newLimit(3, Sell, 50, 150.0))

	// Drop the middle order; FIFO priority must now skip from 1 to 3.
	if err := b.CancelOrder(2); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	checkInvariants(t, b)

	trades := b.AddOrder(newLimit(4, Buy, 100, 150.0))
	if len(trades) != 2 {
		t.Fatalf("got %d trades, want 2", len(trades))
	}
	if trades[0].SellOrderID != 1 || trades[1].SellOrderID != 3 {
		t.Errorf("matched %d then %d, want 1 then 3", trades[0].SellOrderID, trades[1].SellOrderID)
	}
	if !b.Empty() {
		t.Error("book should be empty")
	}
}
