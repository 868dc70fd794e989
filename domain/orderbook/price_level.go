package orderbook

import "fmt"

// PriceLevel holds every resting order at one price as an intrusive
// doubly linked FIFO: head is the oldest order and matches first.
// The linked structure is what keeps cancellation O(1) — removing one
// order never invalidates the handles to any other.
type PriceLevel struct {
	Price Price

	head, tail *Order
	totalQty   Quantity
	count      int
}

// Add appends the order at the tail of the FIFO and accounts its
// remaining quantity into the cached aggregate. The *Order itself is
// the removal handle.
func (l *PriceLevel) Add(o *Order) {
	if l.tail == nil {
		l.head = o
	} else {
		l.tail.next = o
		o.prev = l.tail
	}
	l.tail = o
	l.totalQty += o.Remaining()
	l.count++
}

// Remove unlinks the order and subtracts its remaining quantity at
// the moment of removal. An order fully consumed by the matching loop
// has remaining 0 here, so its fills are not double-counted (the loop
// already reduced the aggregate fill by fill).
func (l *PriceLevel) Remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next, o.prev = nil, nil
	l.count--
	r := o.Remaining()
	if r > l.totalQty {
		r = l.totalQty
	}
	l.totalQty -= r
}

// Reduce subtracts n from the cached aggregate without unlinking
// anything. The matching loop calls it on every fill so the
// TotalQty == Σ remaining invariant holds across the inner loop.
// Callers must not reduce below zero.
func (l *PriceLevel) Reduce(n Quantity) {
	if n > l.totalQty {
		n = l.totalQty
	}
	l.totalQty -= n
}

// Front returns the oldest resting order, or nil when empty.
func (l *PriceLevel) Front() *Order { return l.head }

// TotalQty returns the cached aggregate remaining quantity.
func (l *PriceLevel) TotalQty() Quantity { return l.totalQty }

// Len returns the number of resting orders.
func (l *PriceLevel) Len() int { return l.count }

// Empty reports whether the level holds no orders.
func (l *PriceLevel) Empty() bool { return l.head == nil }

func (l *PriceLevel) String() string {
	return fmt.Sprintf("PriceLevel{Price=%s, Orders=%d, TotalQty=%d}", l.Price, l.count, l.totalQty)
}
