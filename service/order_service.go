package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"matchbook/domain/orderbook"
	"matchbook/infra/memory"
	"matchbook/infra/metrics"
	"matchbook/infra/sequence"
)

// TradeSink consumes trades produced by the matching loop. Sink
// failures are logged and never propagate back into the engine.
type TradeSink interface {
	Publish(ctx context.Context, t orderbook.Trade) error
}

// OrderService coordinates the domain book, order storage, id
// assignment, and trade publishing.
type OrderService struct {
	mu sync.Mutex

	book   *orderbook.OrderBook
	pool   *memory.Pool[orderbook.Order]
	seq    *sequence.Sequencer
	active map[orderbook.OrderID]*orderbook.Order

	sinks []TradeSink
	log   zerolog.Logger
}

func NewOrderService(
	book *orderbook.OrderBook,
	pool *memory.Pool[orderbook.Order],
	seq *sequence.Sequencer,
	log zerolog.Logger,
	sinks ...TradeSink,
) *OrderService {
	return &OrderService{
		book:   book,
		pool:   pool,
		seq:    seq,
		active: make(map[orderbook.OrderID]*orderbook.Order),
		sinks:  sinks,
		log:    log,
	}
}

// ExecutionReport is the caller-facing result of one admission.
type ExecutionReport struct {
	OrderID   orderbook.OrderID
	Status    orderbook.OrderStatus
	Quantity  orderbook.Quantity
	Filled    orderbook.Quantity
	Remaining orderbook.Quantity
	Trades    []orderbook.Trade
}

// OrderSnapshot is a read-only copy of an order's current state.
type OrderSnapshot struct {
	ID        orderbook.OrderID
	Symbol    string
	Side      orderbook.Side
	Type      orderbook.OrderType
	Quantity  orderbook.Quantity
	Filled    orderbook.Quantity
	Remaining orderbook.Quantity
	Price     orderbook.Price
	Status    orderbook.OrderStatus
	CreatedAt time.Time
}

// Summary is the top-of-book view.
type Summary struct {
	Symbol     string
	BestBid    orderbook.Price
	HasBid     bool
	BestAsk    orderbook.Price
	HasAsk     bool
	Spread     orderbook.Price
	HasSpread  bool
	OrderCount int
	BidLevels  int
	AskLevels  int
}

// DepthLevel is one aggregated rung of the ladder.
type DepthLevel struct {
	Price  orderbook.Price
	Qty    orderbook.Quantity
	Orders int
}

// DepthSnapshot is the top N levels of both sides, best-first.
type DepthSnapshot struct {
	Symbol string
	Bids   []DepthLevel
	Asks   []DepthLevel
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// PlaceOrder admits a new order. The returned report carries the
// assigned id, the final status, and every trade the admission
// generated. A validation failure surfaces as status Rejected plus
// the validation error.
func (s *OrderService) PlaceOrder(
	ctx context.Context,
	side orderbook.Side,
	otype orderbook.OrderType,
	price float64,
	qty orderbook.Quantity,
) (ExecutionReport, error) {
	o := s.pool.Get()
	id := orderbook.OrderID(s.seq.Next())
	*o = orderbook.Order{
		ID:        id,
		Symbol:    s.book.Symbol(),
		Side:      side,
		Type:      otype,
		Quantity:  qty,
		Price:     orderbook.PriceFromFloat(price),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	start := time.Now()
	trades := s.book.AddOrder(o)
	metrics.MatchLatencySeconds.Observe(time.Since(start).Seconds())

	resting := o.IsLimit() && o.Active() && o.Remaining() > 0
	if resting {
		s.active[id] = o
	}
	// Resting orders fully consumed by this admission are gone from
	// the book; drop our references so their storage can be recycled.
	var consumed []*orderbook.Order
	for _, t := range trades {
		pid := t.PassiveOrderID()
		if p, ok := s.active[pid]; ok && !p.Active() {
			delete(s.active, pid)
			consumed = append(consumed, p)
		}
	}
	rep := ExecutionReport{
		OrderID:   id,
		Status:    o.Status,
		Quantity:  o.Quantity,
		Filled:    o.Filled,
		Remaining: o.Remaining(),
		Trades:    trades,
	}
	metrics.RestingOrders.Set(float64(s.book.OrderCount()))
	s.mu.Unlock()

	if rep.Status == orderbook.Rejected {
		err := o.Validate()
		metrics.OrdersRejectedTotal.Inc()
		s.pool.Put(o)
		s.log.Debug().Uint64("order_id", uint64(id)).Err(err).Msg("order rejected")
		return rep, err
	}

	metrics.OrdersPlacedTotal.Inc()
	s.publish(ctx, trades)
	for _, p := range consumed {
		s.pool.Put(p)
	}

	s.log.Debug().
		Uint64("order_id", uint64(id)).
		Str("side", side.String()).
		Str("type", otype.String()).
		Uint64("qty", uint64(qty)).
		Int("trades", len(trades)).
		Str("status", rep.Status.String()).
		Msg("order placed")

	if !resting {
		// Fully matched, or a market remainder that was discarded:
		// the book holds no reference, the storage can be recycled.
		s.pool.Put(o)
	}
	return rep, nil
}

// CancelOrder removes a resting order by id.
func (s *OrderService) CancelOrder(ctx context.Context, id orderbook.OrderID) error {
	s.mu.Lock()
	err := s.book.CancelOrder(id)
	var o *orderbook.Order
	if err == nil {
		o = s.active[id]
		delete(s.active, id)
	}
	metrics.RestingOrders.Set(float64(s.book.OrderCount()))
	s.mu.Unlock()

	if err != nil {
		return err
	}

	metrics.OrdersCancelledTotal.Inc()
	s.log.Debug().Uint64("order_id", uint64(id)).Msg("order cancelled")
	if o != nil {
		s.pool.Put(o)
	}
	return nil
}

func (s *OrderService) publish(ctx context.Context, trades []orderbook.Trade) {
	if len(trades) == 0 {
		return
	}
	metrics.TradesMatchedTotal.Add(float64(len(trades)))
	for _, t := range trades {
		metrics.TradeVolumeTotal.Add(float64(t.Quantity))
		for _, sink := range s.sinks {
			if err := sink.Publish(ctx, t); err != nil {
				s.log.Warn().Err(err).Uint64("trade_id", uint64(t.ID)).Msg("trade sink publish failed")
			}
		}
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Order returns a copy of a resting order's state.
func (s *OrderService) Order(id orderbook.OrderID) (OrderSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.active[id]
	if !ok {
		return OrderSnapshot{}, false
	}
	return OrderSnapshot{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Type:      o.Type,
		Quantity:  o.Quantity,
		Filled:    o.Filled,
		Remaining: o.Remaining(),
		Price:     o.Price,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}, true
}

// BookSummary returns the top-of-book view.
func (s *OrderService) BookSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Symbol:     s.book.Symbol(),
		OrderCount: s.book.OrderCount(),
		BidLevels:  s.book.BidLevels(),
		AskLevels:  s.book.AskLevels(),
	}
	sum.BestBid, sum.HasBid = s.book.BestBid()
	sum.BestAsk, sum.HasAsk = s.book.BestAsk()
	sum.Spread, sum.HasSpread = s.book.Spread()
	return sum
}

// Depth returns up to n aggregated levels per side, best-first.
func (s *OrderService) Depth(n int) DepthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := DepthSnapshot{Symbol: s.book.Symbol()}
	if n <= 0 {
		return snap
	}
	collect := func(dst *[]DepthLevel) func(*orderbook.PriceLevel) bool {
		return func(lvl *orderbook.PriceLevel) bool {
			*dst = append(*dst, DepthLevel{Price: lvl.Price, Qty: lvl.TotalQty(), Orders: lvl.Len()})
			return len(*dst) < n
		}
	}
	s.book.BidsWalk(collect(&snap.Bids))
	s.book.AsksWalk(collect(&snap.Asks))
	return snap
}
