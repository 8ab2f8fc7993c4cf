// Package pathengine animates a shipment marker along its dense path from
// discrete position updates, the way the tracking map client renders them.
package pathengine

import (
	"github.com/paulmach/orb"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/geo"
)

// NearDestThreshold is the remaining distance, in meters, below which the
// view focuses on the destination.
const NearDestThreshold = 80000

// Update is one observed realtime event. Coordinates are optional: a
// status-only update moves nothing.
type Update struct {
	Lng       *float64
	Lat       *float64
	Status    domain.ShipmentStatus
	Exception bool
}

// Engine smooths discrete position updates into stepwise marker movement
// along a fixed path. The target index only ever advances, so a stale or
// re-delivered update can never drag the marker backwards.
type Engine struct {
	path    []orb.Point
	actual  int
	target  int
	started bool

	status    domain.ShipmentStatus
	exception bool
	focused   bool
}

func New() *Engine {
	return &Engine{}
}

// SetPath installs the dense path and snaps the marker to its start. Updates
// observed before a path is set only carry status.
func (e *Engine) SetPath(path []orb.Point) {
	e.path = append([]orb.Point(nil), path...)
	e.actual = 0
	e.target = 0
	e.started = false
}

// Observe ingests a realtime update. With coordinates present the update is
// projected onto the path and may advance the target index; the marker itself
// moves on subsequent Tick calls. Without a path, or without coordinates,
// only the status fields change.
func (e *Engine) Observe(u Update) {
	e.status = u.Status
	e.exception = u.Exception

	if u.Lng == nil || u.Lat == nil || len(e.path) == 0 {
		e.refocus()
		return
	}

	snapped := geo.SnapToPath(orb.Point{*u.Lng, *u.Lat}, e.path)
	idx := geo.NearestIndex(snapped, e.path)
	if !e.started {
		// First fix: jump straight there instead of animating from the start.
		e.actual = idx
		e.target = idx
		e.started = true
	} else if idx > e.target {
		e.target = idx
	}

	e.refocus()
}

// Tick moves the marker one adaptive step toward the target index. It
// reports whether the marker moved.
func (e *Engine) Tick() bool {
	if len(e.path) == 0 || e.actual >= e.target {
		return false
	}

	step := stepFor(e.target - e.actual)
	if e.focused && step > 2 {
		// Near the destination the camera is zoomed in, big jumps look wrong.
		step = 2
	}

	e.actual += step
	if e.actual > e.target {
		e.actual = e.target
	}

	e.refocus()
	return true
}

// stepFor picks the per-tick stride from the index backlog, so a marker far
// behind its target catches up quickly and creeps when nearly in sync.
func stepFor(diff int) int {
	switch {
	case diff > 300:
		return 20
	case diff > 120:
		return 10
	case diff > 40:
		return 4
	case diff > 10:
		return 2
	default:
		return 1
	}
}

// refocus latches the destination focus the first time the marker is near
// the destination during active delivery with no open exception. The latch
// never releases.
func (e *Engine) refocus() {
	if e.focused || len(e.path) < 2 || e.exception {
		return
	}
	if e.status != domain.StatusOutForDelivery && e.status != domain.StatusReadyForPickup {
		return
	}
	if e.Remaining() <= NearDestThreshold {
		e.focused = true
	}
}

// Position returns the marker's current point; ok is false before a path is
// set.
func (e *Engine) Position() (orb.Point, bool) {
	if len(e.path) == 0 {
		return orb.Point{}, false
	}
	return e.path[e.actual], true
}

// Progress is the fraction of the path the marker has covered, in [0, 1].
func (e *Engine) Progress() float64 {
	if len(e.path) < 2 {
		return 0
	}
	return float64(e.actual) / float64(len(e.path)-1)
}

// Remaining is the great-circle distance, in meters, from the marker to the
// path's final point.
func (e *Engine) Remaining() float64 {
	if len(e.path) == 0 {
		return 0
	}
	return geo.Haversine(e.path[e.actual], e.path[len(e.path)-1])
}

// Status returns the last observed shipment status.
func (e *Engine) Status() domain.ShipmentStatus {
	return e.status
}

// Focused reports whether the destination focus has latched.
func (e *Engine) Focused() bool {
	return e.focused
}
