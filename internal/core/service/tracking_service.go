package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

type trackingService struct {
	shipments ports.ShipmentStore
	routes    ports.RouteStore
	realtime  ports.RealtimeStore
	log       zerolog.Logger
}

// NewTrackingService returns the read-side TrackingService implementation.
func NewTrackingService(
	shipments ports.ShipmentStore,
	routes ports.RouteStore,
	realtime ports.RealtimeStore,
	log zerolog.Logger,
) ports.TrackingService {
	return &trackingService{
		shipments: shipments,
		routes:    routes,
		realtime:  realtime,
		log:       log,
	}
}

// ListShipments returns every shipment for the order list view.
func (s *trackingService) ListShipments(ctx context.Context) ([]*domain.Shipment, error) {
	return s.shipments.List(ctx)
}

// GetTrackingDetail assembles the tracking page view: shipment, ordered
// route, realtime row and pickup info. The realtime row may legitimately be
// absent before the first simulated event.
func (s *trackingService) GetTrackingDetail(ctx context.Context, trackingCode string) (*ports.TrackingDetail, error) {
	shipment, err := s.shipments.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, fmt.Errorf("tracking detail: %w", err)
	}

	route, err := s.routes.GetRoute(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("tracking detail: route: %w", err)
	}

	rt, err := s.realtime.Get(ctx, shipment.ID)
	if err != nil && !errors.Is(err, domain.ErrRealtimeNotFound) {
		return nil, fmt.Errorf("tracking detail: realtime: %w", err)
	}

	if err := s.ensurePickupInfo(ctx, shipment.ID, route); err != nil {
		// Backfill failure is not fatal for the read path.
		s.log.Warn().Err(err).Str("tracking_code", trackingCode).Msg("pickup info backfill failed")
	}

	pickup, err := s.routes.FirstPickupInfo(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("tracking detail: pickup info: %w", err)
	}

	var fallback domain.ShipmentStatus
	if len(route) > 0 {
		fallback = route[len(route)-1].Status
	}

	return &ports.TrackingDetail{
		Shipment:        shipment,
		Route:           route,
		Realtime:        rt,
		Pickup:          pickup,
		LogisticsStatus: domain.DisplayStatus(shipment, rt, fallback),
	}, nil
}

// ensurePickupInfo lazily issues a pickup code when the terminal route point
// is "ready-for-pickup" but no code has been generated yet. This covers
// shipments seeded directly at their final checkpoint that were never driven
// there by the simulator.
func (s *trackingService) ensurePickupInfo(ctx context.Context, shipmentID string, route []domain.RoutePoint) error {
	if len(route) == 0 {
		return nil
	}

	last := route[len(route)-1]
	if last.Status != domain.StatusReadyForPickup || last.PickupCode != nil {
		return nil
	}

	code := GeneratePickupCode(shipmentID, last.Seq)
	station := PickupStationName(&last)

	if err := s.routes.SetPickupCode(ctx, last.ID, code, station); err != nil {
		return err
	}

	s.log.Info().
		Str("shipment_id", shipmentID).
		Int("seq", last.Seq).
		Str("code", code).
		Msg("pickup code backfilled")

	return nil
}
