// Package depth periodically snapshots the top of the book and
// publishes it to the market-data topic.
package depth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"matchbook/infra/kafka"
	"matchbook/service"
)

// Source yields depth snapshots; satisfied by service.OrderService.
type Source interface {
	Depth(levels int) service.DepthSnapshot
}

// Snapshot is the JSON payload written to the depth topic.
type Snapshot struct {
	Symbol string  `json:"symbol"`
	TS     int64   `json:"ts"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
}

type Level struct {
	Price  string `json:"price"`
	Qty    uint64 `json:"qty"`
	Orders int    `json:"orders"`
}

type Job struct {
	src      Source
	producer *kafka.Producer
	levels   int
	interval time.Duration
	log      zerolog.Logger
}

func NewJob(src Source, producer *kafka.Producer, levels int, interval time.Duration, log zerolog.Logger) *Job {
	return &Job{src: src, producer: producer, levels: levels, interval: interval, log: log}
}

// Run publishes one snapshot per tick until the context is cancelled.
func (j *Job) Run(ctx context.Context) {
	j.log.Info().Dur("interval", j.interval).Msg("depth publisher started")
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.publishOnce(ctx)
		}
	}
}

func (j *Job) publishOnce(ctx context.Context) {
	snap := j.src.Depth(j.levels)

	toLevel := func(l service.DepthLevel, _ int) Level {
		return Level{Price: l.Price.String(), Qty: uint64(l.Qty), Orders: l.Orders}
	}
	payload, err := json.Marshal(Snapshot{
		Symbol: snap.Symbol,
		TS:     time.Now().UnixNano(),
		Bids:   lo.Map(snap.Bids, toLevel),
		Asks:   lo.Map(snap.Asks, toLevel),
	})
	if err != nil {
		j.log.Error().Err(err).Msg("depth snapshot marshal failed")
		return
	}

	if err := j.producer.Send(ctx, []byte(snap.Symbol), payload); err != nil {
		j.log.Warn().Err(err).Msg("depth publish failed")
	}
}
