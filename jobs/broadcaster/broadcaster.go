// Package broadcaster streams trade events to Kafka. It decouples
// the matching path from the broker: Publish only enqueues, a
// background goroutine drains the queue and produces.
package broadcaster

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"matchbook/domain/orderbook"
	"matchbook/infra/metrics"
)

// Event is the JSON payload written to the trade topic.
type Event struct {
	V         int    `json:"v"`
	Type      string `json:"type"`
	TradeID   uint64 `json:"trade_id"`
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Qty       uint64 `json:"qty"`
	Buy       uint64 `json:"buy"`
	Sell      uint64 `json:"sell"`
	Aggressor string `json:"aggressor"`
	TS        int64  `json:"ts"`
}

var errQueueFull = errors.New("trade event queue full")

type Broadcaster struct {
	producer sarama.SyncProducer
	topic    string
	queue    chan orderbook.Trade
	log      zerolog.Logger
}

func New(brokers []string, topic string, queueSize int, log zerolog.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &Broadcaster{
		producer: producer,
		topic:    topic,
		queue:    make(chan orderbook.Trade, queueSize),
		log:      log,
	}, nil
}

// Publish implements the trade sink interface. It never blocks; when
// the queue is full the event is dropped and counted.
func (b *Broadcaster) Publish(_ context.Context, t orderbook.Trade) error {
	select {
	case b.queue <- t:
		return nil
	default:
		metrics.TradeEventsDropped.Inc()
		return errQueueFull
	}
}

// Run drains the queue until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info().Str("topic", b.topic).Msg("trade broadcaster started")
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-b.queue:
			b.send(t)
		}
	}
}

func (b *Broadcaster) send(t orderbook.Trade) {
	payload, err := json.Marshal(EventFromTrade(t))
	if err != nil {
		b.log.Error().Err(err).Msg("trade event marshal failed")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(t.Symbol),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := b.producer.SendMessage(msg); err != nil {
		b.log.Warn().Err(err).Uint64("trade_id", uint64(t.ID)).Msg("kafka produce failed")
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}

func EventFromTrade(t orderbook.Trade) Event {
	return Event{
		V:         1,
		Type:      "trade",
		TradeID:   uint64(t.ID),
		Symbol:    t.Symbol,
		Price:     t.Price.String(),
		Qty:       uint64(t.Quantity),
		Buy:       uint64(t.BuyOrderID),
		Sell:      uint64(t.SellOrderID),
		Aggressor: t.Aggressor.String(),
		TS:        t.Timestamp.UnixNano(),
	}
}
