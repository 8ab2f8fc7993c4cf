package ports

import (
	"context"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// ShipmentStore defines read access to shipments plus the single mutation the
// realtime pipeline is allowed to make (the exception flag).
type ShipmentStore interface {
	FindByTrackingCode(ctx context.Context, trackingCode string) (*domain.Shipment, error)
	List(ctx context.Context) ([]*domain.Shipment, error)
	// SetExceptionReason overwrites the shipment's exception reason; a nil
	// reason clears it.
	SetExceptionReason(ctx context.Context, shipmentID string, reason *string) error
}

// RouteStore exposes a shipment's ordered checkpoints. Routes are immutable
// once seeded, except for lazily populated pickup code/station fields.
type RouteStore interface {
	// GetRoute returns the shipment's route points ordered by seq ascending.
	GetRoute(ctx context.Context, shipmentID string) ([]domain.RoutePoint, error)
	// GetRoutePointAt returns the point at the given sequence number, or
	// domain.ErrRoutePointNotFound.
	GetRoutePointAt(ctx context.Context, shipmentID string, seq int) (*domain.RoutePoint, error)
	SetPickupCode(ctx context.Context, routePointID string, code, station string) error
	// ClearPickupCodes removes code/station from all of the shipment's points.
	ClearPickupCodes(ctx context.Context, shipmentID string) error
	// FirstPickupInfo returns the (seq, code, station) of the first route
	// point carrying a non-null pickup code, or nil when none does.
	FirstPickupInfo(ctx context.Context, shipmentID string) (*domain.PickupInfo, error)
}

// RealtimeStore holds at most one position row per shipment with upsert
// semantics. Get returns domain.ErrRealtimeNotFound when no row exists yet.
type RealtimeStore interface {
	Get(ctx context.Context, shipmentID string) (*domain.RealtimePosition, error)
	Upsert(ctx context.Context, pos *domain.RealtimePosition) error
}
