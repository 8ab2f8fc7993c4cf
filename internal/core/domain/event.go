package domain

import "time"

// Event types pushed to live viewers.
const (
	EventTypeRealtime = "realtime"
	EventTypeReset    = "reset"
)

// PositionEvent is one synthetic GPS update emitted by a simulation
// scheduler. Seq is non-nil only at original route points; interpolated
// intra-segment points carry no sequence number.
type PositionEvent struct {
	ShipmentID   string
	TrackingCode string
	Lng          float64
	Lat          float64
	Status       ShipmentStatus
	Seq          *int
	Timestamp    time.Time
}

// ConsistencyResult is the outcome of checking a reported status against the
// route's expected status at a sequence number.
type ConsistencyResult struct {
	Match    bool
	Expected *ShipmentStatus
}

// EnrichedEvent is the single message type delivered to subscribers: the
// realtime snapshot plus the consistency verdict and pickup info.
type EnrichedEvent struct {
	Type            string            `json:"type"`
	TrackingCode    string            `json:"tracking_code"`
	Realtime        *RealtimePosition `json:"realtime"`
	LogisticsStatus ShipmentStatus    `json:"logistics_status"`
	ExceptionReason *string           `json:"exception_reason"`
	ReportedStatus  ShipmentStatus    `json:"reported_status,omitempty"`
	ExpectedStatus  *ShipmentStatus   `json:"expected_status"`
	StatusMatch     bool              `json:"status_match"`
	Pickup          *PickupInfo       `json:"pickup_info"`
}
