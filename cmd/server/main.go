package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchbook/api/rest"
	"matchbook/config"
	"matchbook/domain/orderbook"
	"matchbook/infra/kafka"
	infralog "matchbook/infra/log"
	"matchbook/infra/memory"
	redissink "matchbook/infra/redis"
	"matchbook/infra/sequence"
	"matchbook/jobs/broadcaster"
	"matchbook/jobs/depth"
	"matchbook/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := infralog.NewLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---------------- Domain ----------------

	book := orderbook.NewOrderBook(cfg.Symbol)
	pool := memory.NewPool(func() *orderbook.Order { return &orderbook.Order{} })
	seq := sequence.New(0)

	// ---------------- Trade sinks ----------------

	var sinks []service.TradeSink

	if cfg.Redis.Enabled {
		pub, err := redissink.NewPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Channel, log)
		if err != nil {
			log.Fatal().Err(err).Msg("redis publisher init failed")
		}
		defer pub.Close()
		sinks = append(sinks, pub)
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("redis trade sink enabled")
	}

	var bc *broadcaster.Broadcaster
	if cfg.Kafka.Enabled {
		bc, err = broadcaster.New(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic, cfg.Kafka.QueueSize, log)
		if err != nil {
			log.Fatal().Err(err).Msg("kafka broadcaster init failed")
		}
		defer bc.Close()
		sinks = append(sinks, bc)
		go bc.Run(ctx)
	}

	// ---------------- Service ----------------

	svc := service.NewOrderService(book, pool, seq, log, sinks...)

	// ---------------- Market data ----------------

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
		defer producer.Close()
		job := depth.NewJob(svc, producer, cfg.Depth.Levels, cfg.Depth.Interval, log)
		go job.Run(ctx)
	}

	// ---------------- HTTP ----------------

	api := rest.NewServer(svc, log)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("symbol", cfg.Symbol).Msg("matchbook engine listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
