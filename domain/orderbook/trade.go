package orderbook

import "time"

// Trade is the immutable record of one fill. BuyOrderID always names
// the Buy-side order and SellOrderID the Sell-side order, regardless
// of which side was the aggressor. Price is always the resting
// order's price: the order that was there first set the price, the
// aggressor takes it.
type Trade struct {
	ID          TradeID
	BuyOrderID  OrderID
	SellOrderID OrderID
	Symbol      string
	Price       Price
	Quantity    Quantity
	Timestamp   time.Time
	Aggressor   Side
}

// AggressorOrderID returns the id of the incoming order.
func (t Trade) AggressorOrderID() OrderID {
	if t.Aggressor == Buy {
		return t.BuyOrderID
	}
	return t.SellOrderID
}

// PassiveOrderID returns the id of the resting order.
func (t Trade) PassiveOrderID() OrderID {
	if t.Aggressor == Buy {
		return t.SellOrderID
	}
	return t.BuyOrderID
}

// Value returns price*quantity, still at fixed-point scale.
func (t Trade) Value() int64 {
	return int64(t.Price) * int64(t.Quantity)
}
