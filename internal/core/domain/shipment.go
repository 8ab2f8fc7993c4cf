package domain

import (
	"errors"
	"time"
)

// ShipmentStatus is the logistics status reported along a shipment's route.
type ShipmentStatus string

const (
	StatusCollected      ShipmentStatus = "collected"
	StatusInTransit      ShipmentStatus = "in-transit"
	StatusOutForDelivery ShipmentStatus = "out-for-delivery"
	StatusReadyForPickup ShipmentStatus = "ready-for-pickup"
	StatusDelivered      ShipmentStatus = "delivered"

	// StatusException is a display-only status derived from a non-nil
	// exception reason; it never appears on a route point.
	StatusException ShipmentStatus = "exception"
)

// Lifecycle states of the order behind a shipment.
const (
	LifecyclePending    = "pending"
	LifecycleDelivering = "delivering"
	LifecycleFinished   = "finished"
)

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrRealtimeNotFound = errors.New("realtime position not found")
var ErrRoutePointNotFound = errors.New("route point not found")
var ErrInsufficientRoute = errors.New("insufficient route data")

// Address is one endpoint of a shipment.
type Address struct {
	Province string  `json:"province" bson:"province"`
	City     string  `json:"city" bson:"city"`
	Detail   string  `json:"detail" bson:"detail"`
	Lng      float64 `json:"lng" bson:"lng"`
	Lat      float64 `json:"lat" bson:"lat"`
}

// Shipment is the core aggregate root. Created once at registration together
// with its route points; only the realtime pipeline mutates its exception
// reason afterwards.
type Shipment struct {
	ID           string  `json:"id" bson:"_id,omitempty"`
	TrackingCode string  `json:"tracking_code" bson:"tracking_code"`
	OrderNo      string  `json:"order_no" bson:"order_no"`
	Title        string  `json:"title" bson:"title"`
	ShopName     string  `json:"shop_name" bson:"shop_name"`
	Status       string  `json:"status" bson:"status"` // lifecycle state
	Sender       Address `json:"sender" bson:"sender"`
	Receiver     Address `json:"receiver" bson:"receiver"`

	// ExceptionReason is set by the consistency checker on a status mismatch
	// and cleared again when a later checkpoint matches.
	ExceptionReason *string `json:"exception_reason,omitempty" bson:"exception_reason,omitempty"`

	// DwellAtSeq marks a route point where the simulator injects an
	// artificial stall holding the pre-transition status. Nil for healthy
	// shipments.
	DwellAtSeq *int `json:"dwell_at_seq,omitempty" bson:"dwell_at_seq,omitempty"`

	ETA        *time.Time `json:"eta_time,omitempty" bson:"eta_time,omitempty"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	ShippedAt  *time.Time `json:"shipped_at,omitempty" bson:"shipped_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// RoutePoint is a fixed, ordered checkpoint in a shipment's planned path.
// Sequence numbers are contiguous and start at 0. Immutable once seeded,
// except for the lazily populated pickup code/station.
type RoutePoint struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	ShipmentID  string         `json:"shipment_id" bson:"shipment_id"`
	Seq         int            `json:"seq" bson:"seq"`
	Lng         float64        `json:"lng" bson:"lng"`
	Lat         float64        `json:"lat" bson:"lat"`
	City        string         `json:"city" bson:"city"`
	Status      ShipmentStatus `json:"status" bson:"status"`
	Description string         `json:"description" bson:"description"`
	Time        time.Time      `json:"time" bson:"time"`

	PickupCode    *string `json:"pickup_code,omitempty" bson:"pickup_code,omitempty"`
	PickupStation *string `json:"pickup_station,omitempty" bson:"pickup_station,omitempty"`
}

// RealtimePosition is the single best-known location/status snapshot for a
// shipment. At most one row per shipment, last write wins.
type RealtimePosition struct {
	ShipmentID string         `json:"shipment_id"`
	Lng        float64        `json:"lng"`
	Lat        float64        `json:"lat"`
	Status     ShipmentStatus `json:"status"`
	ETA        *time.Time     `json:"eta_time,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// PickupInfo is derived from the first route point carrying a pickup code.
type PickupInfo struct {
	Seq     int    `json:"seq"`
	Code    string `json:"code"`
	Station string `json:"station"`
}

// DisplayStatus resolves the status shown to viewers: an active exception
// shadows everything, then the realtime status, then the fallback (normally
// the last route point's status).
func DisplayStatus(s *Shipment, rt *RealtimePosition, fallback ShipmentStatus) ShipmentStatus {
	if s != nil && s.ExceptionReason != nil && *s.ExceptionReason != "" {
		return StatusException
	}
	if rt != nil && rt.Status != "" {
		return rt.Status
	}
	if fallback != "" {
		return fallback
	}
	return StatusInTransit
}
