// Package redis implements the reference trade sink: every fill is
// published as one line of key=value pairs on a pub/sub channel, for
// downstream subscribers (tape displays, strategies, recorders).
package redis

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"matchbook/domain/orderbook"
)

// Publisher sends trades to a Redis pub/sub channel. One job: take a
// Trade, send it to Redis. Publish failures never reach the matching
// path.
type Publisher struct {
	client  *goredis.Client
	channel string
	log     zerolog.Logger
}

func NewPublisher(ctx context.Context, addr, channel string, log zerolog.Logger) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	return &Publisher{client: client, channel: channel, log: log}, nil
}

// Publish sends one trade. The error is returned for the caller's
// accounting but the book's state is unaffected either way.
func (p *Publisher) Publish(ctx context.Context, t orderbook.Trade) error {
	if err := p.client.Publish(ctx, p.channel, FormatTrade(t)).Err(); err != nil {
		p.log.Warn().Err(err).Uint64("trade_id", uint64(t.ID)).Msg("redis publish failed")
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// FormatTrade renders the wire line:
//
//	symbol=AAPL price=101.000000 qty=100 buy=1 sell=2
func FormatTrade(t orderbook.Trade) string {
	return fmt.Sprintf("symbol=%s price=%s qty=%d buy=%d sell=%d",
		t.Symbol, t.Price, t.Quantity, t.BuyOrderID, t.SellOrderID)
}
