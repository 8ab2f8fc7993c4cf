package ports

import (
	"context"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// TrackingDetail is the full view returned for one tracking code: the
// shipment, its ordered route, the realtime row (nil before the first
// simulated event) and pickup info when issued.
type TrackingDetail struct {
	Shipment        *domain.Shipment
	Route           []domain.RoutePoint
	Realtime        *domain.RealtimePosition
	Pickup          *domain.PickupInfo
	LogisticsStatus domain.ShipmentStatus
}

// TrackingService defines the read-side use cases backing the order list and
// the tracking page.
type TrackingService interface {
	ListShipments(ctx context.Context) ([]*domain.Shipment, error)
	GetTrackingDetail(ctx context.Context, trackingCode string) (*TrackingDetail, error)
}
