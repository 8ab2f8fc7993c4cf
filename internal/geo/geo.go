// Package geo provides the small amount of planar/spherical geometry the
// tracking pipeline needs: great-circle distance, point-to-polyline snapping
// and nearest-vertex lookup. Points are orb.Point ([lng, lat]).
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two points in meters.
func Haversine(p1, p2 orb.Point) float64 {
	lat1 := p1[1] * math.Pi / 180
	lng1 := p1[0] * math.Pi / 180
	lat2 := p2[1] * math.Pi / 180
	lng2 := p2[0] * math.Pi / 180

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// SnapToPath projects a point onto the nearest segment of a polyline. The
// projection parameter is clamped to [0,1], so the result never leaves its
// segment. A polyline with fewer than 2 vertices returns the input unchanged.
func SnapToPath(p orb.Point, path []orb.Point) orb.Point {
	if len(path) < 2 {
		return p
	}

	best := p
	bestDist2 := math.Inf(1)

	for i := 0; i < len(path)-1; i++ {
		a, b := path[i], path[i+1]

		vx := b[0] - a[0]
		vy := b[1] - a[1]
		len2 := vx*vx + vy*vy
		if len2 == 0 {
			continue
		}

		t := ((p[0]-a[0])*vx + (p[1]-a[1])*vy) / len2
		t = math.Max(0, math.Min(1, t))

		c := orb.Point{a[0] + vx*t, a[1] + vy*t}
		if d2 := dist2(p, c); d2 < bestDist2 {
			bestDist2 = d2
			best = c
		}
	}

	return best
}

// NearestIndex returns the index of the polyline vertex closest to p. This is
// a plain nearest-neighbor scan over vertices, not a segment projection.
// An empty polyline returns 0.
func NearestIndex(p orb.Point, path []orb.Point) int {
	bestIdx := 0
	bestDist2 := math.Inf(1)

	for i, v := range path {
		if d2 := dist2(p, v); d2 < bestDist2 {
			bestDist2 = d2
			bestIdx = i
		}
	}

	return bestIdx
}

func dist2(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
