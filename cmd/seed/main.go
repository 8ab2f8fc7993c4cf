// Command seed wipes and repopulates the demo dataset: a handful of
// shipments with planned routes across China, one of them flagged to stall
// mid-route so the consistency checker has something to catch.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/service"
	"github.com/dyecteam/parcel-tracking/internal/infrastructure/config"
	mongodb "github.com/dyecteam/parcel-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/dyecteam/parcel-tracking/internal/infrastructure/db/redis"
	"github.com/dyecteam/parcel-tracking/pkg/logger"
)

type seedPoint struct {
	lng, lat    float64
	city        string
	status      domain.ShipmentStatus
	description string
	offset      time.Duration
}

type seedShipment struct {
	trackingCode string
	orderNo      string
	title        string
	shopName     string
	lifecycle    string
	sender       domain.Address
	receiver     domain.Address
	dwellAtSeq   *int
	route        []seedPoint
}

func intPtr(v int) *int { return &v }

func shipments() []seedShipment {
	return []seedShipment{
		{
			trackingCode: "434894534579619",
			orderNo:      "2025111602125290",
			title:        "Skincare gift set",
			shopName:     "Sunrise Beauty",
			lifecycle:    domain.LifecycleDelivering,
			sender:       domain.Address{Province: "Beijing", City: "Beijing", Detail: "Chaoyang warehouse", Lng: 116.407, Lat: 39.904},
			receiver:     domain.Address{Province: "Shanghai", City: "Shanghai", Detail: "Xuhui district", Lng: 121.432, Lat: 31.148},
			route: []seedPoint{
				{116.407, 39.904, "Beijing", domain.StatusCollected, "Picked up at Chaoyang warehouse, heading to the Beijing transfer hub", 0},
				{117.200, 39.133, "Tianjin", domain.StatusInTransit, "Arrived at the Tianjin transfer hub, heading to Shanghai", 4 * time.Hour},
				{121.400, 31.220, "Shanghai Changning", domain.StatusOutForDelivery, "Arrived at the Changning service station, out for delivery", 24 * time.Hour},
				{121.432, 31.148, "Shanghai Xuhui", domain.StatusReadyForPickup, "Dropped at the Xuhui pickup point, please collect soon", 26 * time.Hour},
			},
		},
		{
			trackingCode: "434894534579620",
			orderNo:      "2025111602125291",
			title:        "Wireless earbuds",
			shopName:     "Northern Audio",
			lifecycle:    domain.LifecycleDelivering,
			sender:       domain.Address{Province: "Liaoning", City: "Shenyang", Detail: "Tiexi warehouse", Lng: 123.431, Lat: 41.796},
			receiver:     domain.Address{Province: "Shanghai", City: "Shanghai", Detail: "Changning district", Lng: 121.400, Lat: 31.220},
			// Stalls at the second checkpoint: the simulator reports a stale
			// status there and the checker flags the mismatch.
			dwellAtSeq: intPtr(1),
			route: []seedPoint{
				{123.431, 41.796, "Shenyang", domain.StatusCollected, "Picked up at Tiexi warehouse, heading to the Shenyang transfer hub", 0},
				{117.120, 36.651, "Jinan", domain.StatusInTransit, "Arrived at the Jinan transfer hub, heading to Nanjing", 9 * time.Hour},
				{118.802, 32.064, "Nanjing", domain.StatusOutForDelivery, "Arrived at the Nanjing distribution center, heading to the Changning pickup point", 20 * time.Hour},
				{121.400, 31.220, "Shanghai Changning", domain.StatusReadyForPickup, "Dropped at the Changning pickup locker, please collect soon", 25 * time.Hour},
			},
		},
		{
			trackingCode: "434894534579621",
			orderNo:      "2025111602125292",
			title:        "Insulated tumbler",
			shopName:     "Southern Goods",
			lifecycle:    domain.LifecycleDelivering,
			sender:       domain.Address{Province: "Guangdong", City: "Guangzhou", Detail: "Baiyun warehouse", Lng: 113.264, Lat: 23.129},
			receiver:     domain.Address{Province: "Shanghai", City: "Shanghai", Detail: "Pudong new district", Lng: 121.614, Lat: 31.214},
			route: []seedPoint{
				{113.264, 23.129, "Guangzhou", domain.StatusCollected, "Picked up at Baiyun warehouse, heading to the Guangzhou transfer hub", 0},
				{112.982, 28.194, "Changsha", domain.StatusInTransit, "Arrived at the Changsha transfer hub, heading to Wuhan", 8 * time.Hour},
				{114.305, 30.592, "Wuhan", domain.StatusInTransit, "Arrived at the Wuhan transfer hub, heading to Shanghai", 17 * time.Hour},
				{121.614, 31.214, "Shanghai Pudong", domain.StatusOutForDelivery, "Arrived at the Pudong service station, out for delivery", 26 * time.Hour},
				{121.614, 31.214, "Shanghai Pudong", domain.StatusDelivered, "Delivered, signed for by the recipient", 29 * time.Hour},
			},
		},
	}
}

func main() {
	log := logger.Init(logger.Options{Pretty: true})
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration load failed")
	}

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer mongoClient.Disconnect(context.Background())

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	shipmentRepo := mongodb.NewShipmentRepository(db)
	routeRepo := mongodb.NewRouteRepository(db)
	realtimeRepo := redisdb.NewRealtimeRepository(rdb)

	if err := shipmentRepo.DeleteAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("clearing shipments failed")
	}
	if err := routeRepo.DeleteAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("clearing route points failed")
	}

	base := time.Now().UTC().Add(-30 * time.Hour)
	for i, seed := range shipments() {
		created := base.Add(time.Duration(i) * time.Hour)
		paid := created.Add(10 * time.Minute)
		shipped := created.Add(2 * time.Hour)

		shipment := &domain.Shipment{
			ID:           fmt.Sprintf("shp-%s", seed.trackingCode),
			TrackingCode: seed.trackingCode,
			OrderNo:      seed.orderNo,
			Title:        seed.title,
			ShopName:     seed.shopName,
			Status:       seed.lifecycle,
			Sender:       seed.sender,
			Receiver:     seed.receiver,
			DwellAtSeq:   seed.dwellAtSeq,
			CreatedAt:    created,
			PaidAt:       &paid,
			ShippedAt:    &shipped,
		}

		points := make([]domain.RoutePoint, 0, len(seed.route))
		for seq, p := range seed.route {
			points = append(points, domain.RoutePoint{
				ID:          fmt.Sprintf("%s-p%d", shipment.ID, seq),
				ShipmentID:  shipment.ID,
				Seq:         seq,
				Lng:         p.lng,
				Lat:         p.lat,
				City:        p.city,
				Status:      p.status,
				Description: p.description,
				Time:        shipped.Add(p.offset),
			})
		}

		shipment.ETA = service.EstimateShipmentArrival(shipment, points)

		if err := shipmentRepo.Insert(ctx, shipment); err != nil {
			log.Fatal().Err(err).Str("tracking_code", seed.trackingCode).Msg("shipment insert failed")
		}
		if err := routeRepo.InsertRoute(ctx, points); err != nil {
			log.Fatal().Err(err).Str("tracking_code", seed.trackingCode).Msg("route insert failed")
		}
		if err := realtimeRepo.Delete(ctx, shipment.ID); err != nil {
			log.Warn().Err(err).Str("tracking_code", seed.trackingCode).Msg("realtime cleanup failed")
		}

		log.Info().
			Str("tracking_code", seed.trackingCode).
			Int("route_points", len(points)).
			Msg("shipment seeded")
	}

	log.Info().Msg("seed complete")
}
