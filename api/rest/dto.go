package rest

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"matchbook/domain/orderbook"
	"matchbook/service"
)

type placeOrderRequest struct {
	Side     string  `json:"side"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Quantity uint64  `json:"quantity"`
}

type tradeDTO struct {
	TradeID   uint64  `json:"trade_id"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Qty       uint64  `json:"qty"`
	Buy       uint64  `json:"buy"`
	Sell      uint64  `json:"sell"`
	Aggressor string  `json:"aggressor"`
}

type executionReportDTO struct {
	OrderID   uint64     `json:"order_id"`
	Status    string     `json:"status"`
	Quantity  uint64     `json:"quantity"`
	Filled    uint64     `json:"filled"`
	Remaining uint64     `json:"remaining"`
	Trades    []tradeDTO `json:"trades"`
}

type orderDTO struct {
	OrderID   uint64  `json:"order_id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type"`
	Price     float64 `json:"price"`
	Quantity  uint64  `json:"quantity"`
	Filled    uint64  `json:"filled"`
	Remaining uint64  `json:"remaining"`
	Status    string  `json:"status"`
}

type bookDTO struct {
	Symbol     string   `json:"symbol"`
	BestBid    *float64 `json:"best_bid"`
	BestAsk    *float64 `json:"best_ask"`
	Spread     *float64 `json:"spread"`
	OrderCount int      `json:"order_count"`
	BidLevels  int      `json:"bid_levels"`
	AskLevels  int      `json:"ask_levels"`
}

type depthLevelDTO struct {
	Price  float64 `json:"price"`
	Qty    uint64  `json:"qty"`
	Orders int     `json:"orders"`
}

type depthDTO struct {
	Symbol string          `json:"symbol"`
	Bids   []depthLevelDTO `json:"bids"`
	Asks   []depthLevelDTO `json:"asks"`
}

type errorDTO struct {
	Error string `json:"error"`
}

func parseSide(s string) (orderbook.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return orderbook.Buy, nil
	case "sell":
		return orderbook.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

func parseOrderType(s string) (orderbook.OrderType, error) {
	switch strings.ToLower(s) {
	case "", "limit":
		return orderbook.Limit, nil
	case "market":
		return orderbook.Market, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", s)
	}
}

func toTradeDTO(t orderbook.Trade, _ int) tradeDTO {
	return tradeDTO{
		TradeID:   uint64(t.ID),
		Symbol:    t.Symbol,
		Price:     t.Price.Float64(),
		Qty:       uint64(t.Quantity),
		Buy:       uint64(t.BuyOrderID),
		Sell:      uint64(t.SellOrderID),
		Aggressor: t.Aggressor.String(),
	}
}

func toReportDTO(rep service.ExecutionReport) executionReportDTO {
	trades := lo.Map(rep.Trades, toTradeDTO)
	if trades == nil {
		trades = []tradeDTO{}
	}
	return executionReportDTO{
		OrderID:   uint64(rep.OrderID),
		Status:    rep.Status.String(),
		Quantity:  uint64(rep.Quantity),
		Filled:    uint64(rep.Filled),
		Remaining: uint64(rep.Remaining),
		Trades:    trades,
	}
}

func toOrderDTO(o service.OrderSnapshot) orderDTO {
	return orderDTO{
		OrderID:   uint64(o.ID),
		Symbol:    o.Symbol,
		Side:      o.Side.String(),
		Type:      o.Type.String(),
		Price:     o.Price.Float64(),
		Quantity:  uint64(o.Quantity),
		Filled:    uint64(o.Filled),
		Remaining: uint64(o.Remaining),
		Status:    o.Status.String(),
	}
}

func toBookDTO(sum service.Summary) bookDTO {
	dto := bookDTO{
		Symbol:     sum.Symbol,
		OrderCount: sum.OrderCount,
		BidLevels:  sum.BidLevels,
		AskLevels:  sum.AskLevels,
	}
	if sum.HasBid {
		v := sum.BestBid.Float64()
		dto.BestBid = &v
	}
	if sum.HasAsk {
		v := sum.BestAsk.Float64()
		dto.BestAsk = &v
	}
	if sum.HasSpread {
		v := sum.Spread.Float64()
		dto.Spread = &v
	}
	return dto
}

func toDepthDTO(snap service.DepthSnapshot) depthDTO {
	toLevel := func(l service.DepthLevel, _ int) depthLevelDTO {
		return depthLevelDTO{Price: l.Price.Float64(), Qty: uint64(l.Qty), Orders: l.Orders}
	}
	dto := depthDTO{
		Symbol: snap.Symbol,
		Bids:   lo.Map(snap.Bids, toLevel),
		Asks:   lo.Map(snap.Asks, toLevel),
	}
	if dto.Bids == nil {
		dto.Bids = []depthLevelDTO{}
	}
	if dto.Asks == nil {
		dto.Asks = []depthLevelDTO{}
	}
	return dto
}
