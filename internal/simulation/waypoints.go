package simulation

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/geo"
)

// Waypoint is one step of the dense animation path. Seq is non-nil only for
// waypoints that coincide with an original route point; interpolated steps
// carry neither a sequence number nor a timestamp.
type Waypoint struct {
	Lng    float64
	Lat    float64
	Status domain.ShipmentStatus
	Seq    *int
	Time   *time.Time
}

// statusFlipFraction holds the segment fraction at which an interpolated
// status flips from the departure status to the arrival status, per
// transition pair. Transitions not listed flip at the segment midpoint.
var statusFlipFraction = map[[2]domain.ShipmentStatus]float64{
	{domain.StatusCollected, domain.StatusInTransit}:           0.10,
	{domain.StatusInTransit, domain.StatusOutForDelivery}:      0.90,
	{domain.StatusOutForDelivery, domain.StatusReadyForPickup}: 0.80,
}

const defaultFlipFraction = 0.5

func interpolatedStatus(from, to domain.ShipmentStatus, t float64) domain.ShipmentStatus {
	if from == "" {
		from = domain.StatusInTransit
	}
	if to == "" {
		to = from
	}
	if from == to {
		return from
	}

	flip, ok := statusFlipFraction[[2]domain.ShipmentStatus{from, to}]
	if !ok {
		flip = defaultFlipFraction
	}
	if t < flip {
		return from
	}
	return to
}

// GeneratorConfig tunes the waypoint generator.
type GeneratorConfig struct {
	// StepsPerSegment is the number of ticks spent on each route segment.
	StepsPerSegment int
	// DwellTicks is the number of extra stalled waypoints injected at a
	// flagged route point.
	DwellTicks int
}

func (c GeneratorConfig) withDefaults() GeneratorConfig {
	if c.StepsPerSegment <= 0 {
		c.StepsPerSegment = 5
	}
	if c.DwellTicks <= 0 {
		c.DwellTicks = 5
	}
	return c
}

// BuildWaypoints expands a sparse route into the dense animation path. When a
// realtime position exists the path resumes from its nearest dense waypoint
// instead of restarting at the origin. When dwellAtSeq matches the arrival
// point of a segment, the generator injects a stall: the arrival is first
// reported with the stale departure status (sequence attached, so the
// consistency checker trips), held for DwellTicks sequence-less waypoints,
// and only then emitted with its true status.
//
// A single (or empty) result means the shipment is already at or past its
// final checkpoint.
func BuildWaypoints(route []domain.RoutePoint, resume *domain.RealtimePosition, dwellAtSeq *int, cfg GeneratorConfig) []Waypoint {
	if len(route) < 2 {
		return nil
	}
	cfg = cfg.withDefaults()

	waypoints := make([]Waypoint, 0, len(route)*cfg.StepsPerSegment+cfg.DwellTicks+len(route))
	waypoints = append(waypoints, routePointWaypoint(route[0]))

	for i := 0; i < len(route)-1; i++ {
		from, to := route[i], route[i+1]

		dx := to.Lng - from.Lng
		dy := to.Lat - from.Lat

		for step := 1; step < cfg.StepsPerSegment; step++ {
			t := float64(step) / float64(cfg.StepsPerSegment)
			waypoints = append(waypoints, Waypoint{
				Lng:    from.Lng + dx*t,
				Lat:    from.Lat + dy*t,
				Status: interpolatedStatus(from.Status, to.Status, t),
			})
		}

		if dwellAtSeq != nil && to.Seq == *dwellAtSeq {
			waypoints = append(waypoints, dwellWaypoints(from, to, cfg.DwellTicks)...)
		}
		waypoints = append(waypoints, routePointWaypoint(to))
	}

	if resume == nil {
		return waypoints
	}

	start := nearestWaypoint(orb.Point{resume.Lng, resume.Lat}, waypoints)
	return waypoints[start:]
}

// dwellWaypoints builds the stalled arrival: stale status with the arrival's
// sequence number, then seq-less holds at the same position.
func dwellWaypoints(from, to domain.RoutePoint, ticks int) []Waypoint {
	stale := from.Status
	if stale == "" {
		stale = domain.StatusInTransit
	}

	seq := to.Seq
	out := make([]Waypoint, 0, ticks+1)
	out = append(out, Waypoint{Lng: to.Lng, Lat: to.Lat, Status: stale, Seq: &seq})
	for k := 0; k < ticks; k++ {
		out = append(out, Waypoint{Lng: to.Lng, Lat: to.Lat, Status: stale})
	}
	return out
}

func routePointWaypoint(p domain.RoutePoint) Waypoint {
	seq := p.Seq
	wp := Waypoint{Lng: p.Lng, Lat: p.Lat, Status: p.Status, Seq: &seq}
	if p.Status == "" {
		wp.Status = domain.StatusInTransit
	}
	if !p.Time.IsZero() {
		t := p.Time
		wp.Time = &t
	}
	return wp
}

func nearestWaypoint(p orb.Point, waypoints []Waypoint) int {
	path := make([]orb.Point, len(waypoints))
	for i, wp := range waypoints {
		path[i] = orb.Point{wp.Lng, wp.Lat}
	}
	return geo.NearestIndex(p, path)
}
