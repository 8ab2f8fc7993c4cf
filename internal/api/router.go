package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dyecteam/parcel-tracking/internal/api/handler"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
	"github.com/dyecteam/parcel-tracking/internal/realtime"
	"github.com/dyecteam/parcel-tracking/internal/simulation"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	tracking ports.TrackingService,
	engine *simulation.Engine,
	hub *realtime.Hub,
	db *mongo.Database,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Tracking routes ---
	trackingHandler := handler.NewTrackingHandler(tracking, engine)
	e.GET("/v1/shipments", trackingHandler.List)
	e.GET("/v1/tracking/:tracking_code", trackingHandler.Get)
	e.POST("/v1/tracking/:tracking_code/reset", trackingHandler.Reset)

	// --- Realtime subscriptions ---
	wsHandler := handler.NewWSHandler(hub, log)
	e.GET("/ws", wsHandler.Subscribe)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
