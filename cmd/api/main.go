package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ashlink/marketplace/internal/auth"
	"github.com/ashlink/marketplace/internal/config"
	"github.com/ashlink/marketplace/internal/httpx"
	kafkax "github.com/ashlink/marketplace/internal/kafka"
	"github.com/ashlink/marketplace/internal/market"
	"github.com/ashlink/marketplace/internal/postgres"
	"github.com/ashlink/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	createdProd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderCreated, 1024, log)
	createdProd.Start(ctx)
	statusProd := kafkax.NewProducer(cfg.KafkaBrokers, market.TopicOrderStatusChanged, 1024, log)
	statusProd.Start(ctx)

	// Store & services
	repo := market.NewRepo(db)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authn := &httpx.Auth{Tokens: tokens, Store: repo}

	router := httpx.NewRouter(cfg.CORSOrigins)
	(&httpx.AuthHandler{Store: repo, Tokens: tokens}).Register(router, authn)
	(&httpx.CatalogHandler{Store: repo}).Register(router, authn)
	(&httpx.OrdersHandler{
		Orders:          &market.Orders{Store: repo},
		CreatedProducer: createdProd,
		StatusProducer:  statusProd,
		Redis:           rdb,
		Service:         cfg.ServiceName,
	}).Register(router, authn)
	(&httpx.MatchingHandler{Matcher: &market.Matcher{Store: repo}}).Register(router, authn)
	(&httpx.AnalyticsHandler{Aggregator: &market.Aggregator{Store: repo, Redis: rdb}}).Register(router, authn)
	(&httpx.NotificationsHandler{Store: repo}).Register(router, authn)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	createdProd.Close() // flush & close writers
	statusProd.Close()
	cancel() // stop producer loops
	createdProd.WaitClosed()
	statusProd.WaitClosed()
}
