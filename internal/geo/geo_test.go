package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Beijing -> Shanghai, roughly 1070 km.
	beijing := orb.Point{116.407, 39.904}
	shanghai := orb.Point{121.474, 31.230}

	d := Haversine(beijing, shanghai)
	assert.InDelta(t, 1_067_000, d, 15_000)
}

func TestHaversine_ZeroForSamePoint(t *testing.T) {
	p := orb.Point{121.432, 31.148}
	assert.Equal(t, 0.0, Haversine(p, p))
}

func TestSnapToPath_ProjectsOntoSegment(t *testing.T) {
	path := []orb.Point{{0, 0}, {10, 0}}

	snapped := SnapToPath(orb.Point{5, 3}, path)
	assert.InDelta(t, 5.0, snapped[0], 1e-9)
	assert.InDelta(t, 0.0, snapped[1], 1e-9)
}

func TestSnapToPath_ClampsToSegmentEnds(t *testing.T) {
	path := []orb.Point{{0, 0}, {10, 0}}

	// Beyond the far end: must clamp to the last vertex, never extrapolate.
	snapped := SnapToPath(orb.Point{15, 2}, path)
	assert.Equal(t, orb.Point{10, 0}, snapped)

	// Before the start: clamps to the first vertex.
	snapped = SnapToPath(orb.Point{-4, -1}, path)
	assert.Equal(t, orb.Point{0, 0}, snapped)
}

func TestSnapToPath_PicksNearestSegment(t *testing.T) {
	path := []orb.Point{{0, 0}, {10, 0}, {10, 10}}

	snapped := SnapToPath(orb.Point{9.5, 6}, path)
	assert.InDelta(t, 10.0, snapped[0], 1e-9)
	assert.InDelta(t, 6.0, snapped[1], 1e-9)
}

func TestSnapToPath_NeverFartherThanSampledPoints(t *testing.T) {
	path := []orb.Point{{0, 0}, {4, 1}, {7, 5}, {12, 5}}
	probe := orb.Point{6, 2}

	snapped := SnapToPath(probe, path)
	got := dist2(probe, snapped)

	// Dense sampling along every segment must not beat the projection.
	for i := 0; i < len(path)-1; i++ {
		a, b := path[i], path[i+1]
		for k := 0; k <= 100; k++ {
			tt := float64(k) / 100
			sample := orb.Point{a[0] + (b[0]-a[0])*tt, a[1] + (b[1]-a[1])*tt}
			if d := dist2(probe, sample); d < got-1e-12 {
				t.Fatalf("snap missed a closer point %v (d2=%f < %f)", sample, d, got)
			}
		}
	}
}

func TestSnapToPath_DegradesOnShortPolyline(t *testing.T) {
	p := orb.Point{3, 4}
	assert.Equal(t, p, SnapToPath(p, nil))
	assert.Equal(t, p, SnapToPath(p, []orb.Point{{1, 1}}))
}

func TestSnapToPath_SkipsZeroLengthSegments(t *testing.T) {
	path := []orb.Point{{2, 2}, {2, 2}, {6, 2}}
	snapped := SnapToPath(orb.Point{4, 3}, path)
	assert.InDelta(t, 4.0, snapped[0], 1e-9)
	assert.InDelta(t, 2.0, snapped[1], 1e-9)
}

func TestNearestIndex(t *testing.T) {
	path := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {2, 1}}

	assert.Equal(t, 0, NearestIndex(orb.Point{0.1, -0.1}, path))
	assert.Equal(t, 2, NearestIndex(orb.Point{1.05, 0.9}, path))
	assert.Equal(t, 3, NearestIndex(orb.Point{5, 5}, path))
}

func TestNearestIndex_EmptyPath(t *testing.T) {
	assert.Equal(t, 0, NearestIndex(orb.Point{1, 1}, nil))
}

func TestNearestIndex_PrefersEarlierOnTie(t *testing.T) {
	path := []orb.Point{{0, 0}, {2, 0}}
	// Equidistant: strict less-than keeps the first match.
	idx := NearestIndex(orb.Point{1, 0}, path)
	if idx != 0 {
		t.Fatalf("expected earliest index on tie, got %d", idx)
	}
}
