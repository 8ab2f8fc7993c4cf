package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyecteam/parcel-tracking/internal/api"
	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/service"
	"github.com/dyecteam/parcel-tracking/internal/infrastructure/config"
	mongodb "github.com/dyecteam/parcel-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/dyecteam/parcel-tracking/internal/infrastructure/db/redis"
	"github.com/dyecteam/parcel-tracking/internal/realtime"
	"github.com/dyecteam/parcel-tracking/internal/simulation"
	"github.com/dyecteam/parcel-tracking/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		lg := logger.Init(logger.Options{})
		lg.Fatal().Err(err).Msg("configuration load failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	shipmentRepo := mongodb.NewShipmentRepository(db)
	routeRepo := mongodb.NewRouteRepository(db)
	realtimeRepo := redisdb.NewRealtimeRepository(rdb)

	if err := shipmentRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("shipment index creation failed")
	}
	if err := routeRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("route index creation failed")
	}

	// --- Pipeline ---
	// The hub broadcasts engine events and the engine starts/stops on hub
	// subscriptions, so the publisher side is bound through a closure.
	var hub *realtime.Hub
	checker := simulation.NewChecker(shipmentRepo, routeRepo, log)
	engine := simulation.NewEngine(
		simulation.Config{
			TickInterval:    time.Duration(cfg.Sim.TickMS) * time.Millisecond,
			ConsumeInterval: time.Duration(cfg.Sim.ConsumeMS) * time.Millisecond,
			QueueCapacity:   cfg.Sim.QueueCapacity,
			Generator: simulation.GeneratorConfig{
				StepsPerSegment: cfg.Sim.StepsPerSegment,
				DwellTicks:      cfg.Sim.DwellTicks,
			},
		},
		shipmentRepo, routeRepo, realtimeRepo, checker,
		simulation.PublisherFunc(func(code string, evt domain.EnrichedEvent) {
			hub.Broadcast(code, evt)
		}),
		log,
	)
	hub = realtime.NewHub(engine, log)

	go engine.Run(ctx)

	trackingService := service.NewTrackingService(shipmentRepo, routeRepo, realtimeRepo, log)

	// --- HTTP server ---
	e := api.NewRouter(trackingService, engine, hub, db, rdb, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped")
}
