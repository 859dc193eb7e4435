package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ashlink/marketplace/internal/config"
	kafkax "github.com/ashlink/marketplace/internal/kafka"
	"github.com/ashlink/marketplace/internal/market"
	"github.com/ashlink/marketplace/internal/notify"
	"github.com/ashlink/marketplace/internal/postgres"
	"github.com/ashlink/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName+"-notifier").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Store: market.NewRepo(db),
		Redis: rdb,
		Log:   log,
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), 4)

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{market.TopicOrderCreated, market.TopicOrderStatusChanged} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		topic := topic
		g.Go(func() error {
			log.Info().Str("group", group).Str("topic", topic).Int("workers", workers).Msg("consumer started")
			return cons.Start(gctx, svc.HandleOrderEvent)
		})
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down consumers...")
		cancel()
	}()

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("consumer exit")
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
