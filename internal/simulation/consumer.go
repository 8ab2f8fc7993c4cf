package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyecteam/parcel-tracking/internal/api/metrics"
	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/service"
)

// applyEvent runs one event through the pipeline: persist the realtime row,
// check checkpoint consistency, issue a pickup code when the shipment reaches
// a ready-for-pickup checkpoint, then publish the enriched event.
func (e *Engine) applyEvent(ctx context.Context, evt domain.PositionEvent) {
	shipment, err := e.shipments.FindByTrackingCode(ctx, evt.TrackingCode)
	if err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("shipment_not_found").Inc()
		e.log.Error().Err(err).Str("tracking_code", evt.TrackingCode).Msg("event for unknown shipment")
		return
	}

	pos := &domain.RealtimePosition{
		ShipmentID: shipment.ID,
		Lng:        evt.Lng,
		Lat:        evt.Lat,
		Status:     evt.Status,
		ETA:        shipment.ETA,
		UpdatedAt:  evt.Timestamp,
	}
	if err := e.realtime.Upsert(ctx, pos); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("persist_failed").Inc()
		e.log.Error().Err(err).Str("tracking_code", evt.TrackingCode).Msg("realtime upsert failed")
		return
	}

	check := domain.ConsistencyResult{Match: true}
	if evt.Seq != nil {
		check, err = e.checker.CheckSequence(ctx, shipment.ID, *evt.Seq, evt.Status)
		if err != nil {
			metrics.EventsErrorsTotal.WithLabelValues("consistency_failed").Inc()
			e.log.Error().Err(err).Str("tracking_code", evt.TrackingCode).Msg("consistency check failed")
			return
		}
		if !check.Match {
			metrics.StatusMismatchesTotal.Inc()
		}

		if evt.Status == domain.StatusReadyForPickup {
			if err := e.issuePickupCode(ctx, shipment.ID, *evt.Seq); err != nil {
				// Pickup issuance must not block the event flow.
				e.log.Warn().Err(err).Str("tracking_code", evt.TrackingCode).Msg("pickup code issuance failed")
			}
		}
	}

	enriched, err := e.enrich(ctx, shipment.ID, evt, check)
	if err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("enrich_failed").Inc()
		e.log.Error().Err(err).Str("tracking_code", evt.TrackingCode).Msg("event enrichment failed")
		return
	}

	e.publisher.Broadcast(evt.TrackingCode, *enriched)
	metrics.EventsProcessedTotal.WithLabelValues(string(evt.Status)).Inc()
}

// issuePickupCode writes a deterministic pickup code on the checkpoint the
// shipment just reached, unless one already exists.
func (e *Engine) issuePickupCode(ctx context.Context, shipmentID string, seq int) error {
	point, err := e.routes.GetRoutePointAt(ctx, shipmentID, seq)
	if err != nil {
		if errors.Is(err, domain.ErrRoutePointNotFound) {
			return nil
		}
		return err
	}
	if point.PickupCode != nil {
		return nil
	}

	code := service.GeneratePickupCode(shipmentID, seq)
	station := service.PickupStationName(point)
	if err := e.routes.SetPickupCode(ctx, point.ID, code, station); err != nil {
		return err
	}

	e.log.Info().
		Str("shipment_id", shipmentID).
		Int("seq", seq).
		Str("code", code).
		Msg("pickup code issued")
	return nil
}

// enrich re-reads the stores so the broadcast reflects persisted state, not
// the raw event.
func (e *Engine) enrich(ctx context.Context, shipmentID string, evt domain.PositionEvent, check domain.ConsistencyResult) (*domain.EnrichedEvent, error) {
	shipment, err := e.shipments.FindByTrackingCode(ctx, evt.TrackingCode)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}

	rt, err := e.realtime.Get(ctx, shipmentID)
	if err != nil && !errors.Is(err, domain.ErrRealtimeNotFound) {
		return nil, fmt.Errorf("enrich: realtime: %w", err)
	}

	pickup, err := e.routes.FirstPickupInfo(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("enrich: pickup info: %w", err)
	}

	return &domain.EnrichedEvent{
		Type:            domain.EventTypeRealtime,
		TrackingCode:    evt.TrackingCode,
		Realtime:        rt,
		LogisticsStatus: domain.DisplayStatus(shipment, rt, evt.Status),
		ExceptionReason: shipment.ExceptionReason,
		ReportedStatus:  evt.Status,
		ExpectedStatus:  check.Expected,
		StatusMatch:     check.Match,
		Pickup:          pickup,
	}, nil
}

// Snapshot builds a one-shot enriched view of the shipment's current state,
// used to bring late subscribers up to date before live events flow.
func (e *Engine) Snapshot(ctx context.Context, trackingCode string) (*domain.EnrichedEvent, error) {
	shipment, err := e.shipments.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	rt, err := e.realtime.Get(ctx, shipment.ID)
	if err != nil && !errors.Is(err, domain.ErrRealtimeNotFound) {
		return nil, fmt.Errorf("snapshot: realtime: %w", err)
	}

	pickup, err := e.routes.FirstPickupInfo(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: pickup info: %w", err)
	}

	snap := &domain.EnrichedEvent{
		Type:            domain.EventTypeRealtime,
		TrackingCode:    trackingCode,
		Realtime:        rt,
		LogisticsStatus: domain.DisplayStatus(shipment, rt, ""),
		ExceptionReason: shipment.ExceptionReason,
		StatusMatch:     shipment.ExceptionReason == nil,
		Pickup:          pickup,
	}
	if rt != nil {
		snap.ReportedStatus = rt.Status
	}
	return snap, nil
}

// Reset rewinds a shipment to its route origin: the realtime row snaps back
// to the first checkpoint, the exception flag and all pickup codes are
// cleared, subscribers get a synthetic reset event, and the simulator is
// restarted from scratch. Nothing is mutated when the tracking code is
// unknown.
func (e *Engine) Reset(ctx context.Context, trackingCode string) error {
	shipment, err := e.shipments.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	route, err := e.routes.GetRoute(ctx, shipment.ID)
	if err != nil {
		return fmt.Errorf("reset: route: %w", err)
	}
	if len(route) == 0 {
		return fmt.Errorf("reset %s: %w", trackingCode, domain.ErrInsufficientRoute)
	}

	origin := route[0]
	status := origin.Status
	if status == "" {
		status = domain.StatusCollected
	}

	pos := &domain.RealtimePosition{
		ShipmentID: shipment.ID,
		Lng:        origin.Lng,
		Lat:        origin.Lat,
		Status:     status,
		ETA:        shipment.ETA,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := e.realtime.Upsert(ctx, pos); err != nil {
		return fmt.Errorf("reset: realtime: %w", err)
	}
	if err := e.shipments.SetExceptionReason(ctx, shipment.ID, nil); err != nil {
		return fmt.Errorf("reset: clear exception: %w", err)
	}
	if err := e.routes.ClearPickupCodes(ctx, shipment.ID); err != nil {
		return fmt.Errorf("reset: clear pickup codes: %w", err)
	}

	e.publisher.Broadcast(trackingCode, domain.EnrichedEvent{
		Type:            domain.EventTypeReset,
		TrackingCode:    trackingCode,
		Realtime:        pos,
		LogisticsStatus: status,
		ReportedStatus:  status,
		StatusMatch:     true,
	})

	e.StopSimulator(trackingCode)
	if err := e.StartSimulator(ctx, trackingCode); err != nil {
		return fmt.Errorf("reset: restart: %w", err)
	}

	e.log.Info().Str("tracking_code", trackingCode).Msg("shipment reset to origin")
	return nil
}
