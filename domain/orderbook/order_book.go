package orderbook

import "time"

// orderLocation records where a resting order lives so cancel is O(1):
// pick the ladder by side, find the level by price, unlink the order
// through its own intrusive links.
type orderLocation struct {
	side  Side
	price Price
	order *Order
}

// OrderBook matches orders for one instrument under strict price-time
// priority. Bids and asks live in separate ladders whose iteration
// order puts the best price first; the lookup map makes cancellation
// independent of book depth.
type OrderBook struct {
	symbol string

	bids   *ladder
	asks   *ladder
	lookup map[OrderID]orderLocation

	lastTradeID TradeID
}

// NewOrderBook creates an empty book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   newBidLadder(),
		asks:   newAskLadder(),
		lookup: make(map[OrderID]orderLocation),
	}
}

func (b *OrderBook) Symbol() string { return b.symbol }

// ---------------- Matching Engine ---------------- //

// AddOrder admits an order: validate, match against the opposite
// side, then rest any limit remainder. The returned trades are in
// generation order (best price first, FIFO within a level). A market
// order's unfilled remainder is discarded — it never enters the book
// and no error is surfaced; the caller inspects the order itself.
func (b *OrderBook) AddOrder(o *Order) []Trade {
	if err := o.Validate(); err != nil {
		o.Status = Rejected
		return nil
	}

	trades := b.match(o)

	if o.IsLimit() && o.Remaining() > 0 {
		b.rest(o)
	}

	return trades
}

// match walks the opposite ladder from the top of book, draining each
// crossing level in FIFO order until the incoming order is done or
// prices no longer cross.
func (b *OrderBook) match(incoming *Order) []Trade {
	var trades []Trade

	opposite := b.asks
	if incoming.IsSell() {
		opposite = b.bids
	}

	for incoming.Remaining() > 0 {
		lvl := opposite.best()
		if lvl == nil || !crosses(incoming, lvl.Price) {
			break
		}

		for incoming.Remaining() > 0 && !lvl.Empty() {
			resting := lvl.Front()

			qty := min(incoming.Remaining(), resting.Remaining())
			incoming.Fill(qty)
			resting.Fill(qty)
			lvl.Reduce(qty)

			buyID, sellID := incoming.ID, resting.ID
			if incoming.IsSell() {
				buyID, sellID = resting.ID, incoming.ID
			}

			b.lastTradeID++
			trades = append(trades, Trade{
				ID:          b.lastTradeID,
				BuyOrderID:  buyID,
				SellOrderID: sellID,
				Symbol:      b.symbol,
				Price:       lvl.Price, // resting side sets the price
				Quantity:    qty,
				Timestamp:   time.Now(),
				Aggressor:   incoming.Side,
			})

			if resting.Status == Filled {
				lvl.Remove(resting)
				delete(b.lookup, resting.ID)
			}
		}

		if lvl.Empty() {
			opposite.remove(lvl.Price)
		}
	}

	return trades
}

// crosses is the price test against the best opposite level. Market
// orders always cross.
func crosses(incoming *Order, restingPrice Price) bool {
	if incoming.IsMarket() {
		return true
	}
	if incoming.IsBuy() {
		return incoming.Price >= restingPrice
	}
	return incoming.Price <= restingPrice
}

// rest inserts a limit remainder into its own side and indexes it for
// cancellation.
func (b *OrderBook) rest(o *Order) {
	side := b.bids
	if o.IsSell() {
		side = b.asks
	}
	side.upsert(o.Price).Add(o)
	b.lookup[o.ID] = orderLocation{side: o.Side, price: o.Price, order: o}
}

// ---------------- Cancellation ---------------- //

// CancelOrder removes a resting order by id. The status checks on the
// looked-up order are defensive: terminal orders cannot stay in the
// index when it is consistent.
func (b *OrderBook) CancelOrder(id OrderID) error {
	loc, ok := b.lookup[id]
	if !ok {
		return ErrOrderNotFound
	}

	switch loc.order.Status {
	case Cancelled:
		return ErrOrderAlreadyCancelled
	case Filled:
		return ErrOrderAlreadyFilled
	}

	loc.order.Cancel()

	side := b.bids
	if loc.side == Sell {
		side = b.asks
	}
	if lvl := side.get(loc.price); lvl != nil {
		lvl.Remove(loc.order)
		if lvl.Empty() {
			side.remove(loc.price)
		}
	}

	delete(b.lookup, id)
	return nil
}

// ---------------- Market Data ---------------- //

// BestBid returns the highest bid price, if any.
func (b *OrderBook) BestBid() (Price, bool) {
	if lvl := b.bids.best(); lvl != nil {
		return lvl.Price, true
	}
	return InvalidPrice, false
}

// BestAsk returns the lowest ask price, if any.
func (b *OrderBook) BestAsk() (Price, bool) {
	if lvl := b.asks.best(); lvl != nil {
		return lvl.Price, true
	}
	return InvalidPrice, false
}

// Spread returns best ask minus best bid. Absent unless both sides
// are populated.
func (b *OrderBook) Spread() (Price, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return InvalidPrice, false
	}
	return ask - bid, true
}

// VolumeAtPrice returns the aggregate resting quantity at one price
// on one side, or 0 when the level is absent.
func (b *OrderBook) VolumeAtPrice(side Side, price Price) Quantity {
	l := b.bids
	if side == Sell {
		l = b.asks
	}
	if lvl := l.get(price); lvl != nil {
		return lvl.TotalQty()
	}
	return 0
}

// OrderCount returns the number of resting orders on both sides.
func (b *OrderBook) OrderCount() int { return len(b.lookup) }

// BidLevels returns the number of populated bid price levels.
func (b *OrderBook) BidLevels() int { return b.bids.len() }

// AskLevels returns the number of populated ask price levels.
func (b *OrderBook) AskLevels() int { return b.asks.len() }

// Empty reports whether no orders rest on either side.
func (b *OrderBook) Empty() bool { return len(b.lookup) == 0 }

// BidsWalk visits bid levels best-first until fn returns false.
func (b *OrderBook) BidsWalk(fn func(*PriceLevel) bool) { b.bids.walk(fn) }

// AsksWalk visits ask levels best-first until fn returns false.
func (b *OrderBook) AsksWalk(fn func(*PriceLevel) bool) { b.asks.walk(fn) }
