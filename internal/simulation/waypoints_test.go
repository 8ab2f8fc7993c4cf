package simulation

import (
	"testing"
	"time"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

func testRoute() []domain.RoutePoint {
	base := time.Date(2025, 11, 16, 22, 0, 0, 0, time.UTC)
	return []domain.RoutePoint{
		{ID: "p0", ShipmentID: "ship-1", Seq: 0, Lng: 116.40, Lat: 39.90, Status: domain.StatusCollected, Time: base},
		{ID: "p1", ShipmentID: "ship-1", Seq: 1, Lng: 117.20, Lat: 39.08, Status: domain.StatusInTransit, Time: base.Add(4 * time.Hour)},
		{ID: "p2", ShipmentID: "ship-1", Seq: 2, Lng: 118.78, Lat: 32.04, Status: domain.StatusOutForDelivery, Time: base.Add(20 * time.Hour)},
		{ID: "p3", ShipmentID: "ship-1", Seq: 3, Lng: 121.47, Lat: 31.23, Status: domain.StatusReadyForPickup, Time: base.Add(30 * time.Hour)},
	}
}

func TestInterpolatedStatus_FlipFractions(t *testing.T) {
	cases := []struct {
		from, to domain.ShipmentStatus
		t        float64
		want     domain.ShipmentStatus
	}{
		{domain.StatusCollected, domain.StatusInTransit, 0.05, domain.StatusCollected},
		{domain.StatusCollected, domain.StatusInTransit, 0.10, domain.StatusInTransit},
		{domain.StatusInTransit, domain.StatusOutForDelivery, 0.89, domain.StatusInTransit},
		{domain.StatusInTransit, domain.StatusOutForDelivery, 0.90, domain.StatusOutForDelivery},
		{domain.StatusOutForDelivery, domain.StatusReadyForPickup, 0.79, domain.StatusOutForDelivery},
		{domain.StatusOutForDelivery, domain.StatusReadyForPickup, 0.80, domain.StatusReadyForPickup},
		// Unlisted transition flips at the midpoint.
		{domain.StatusReadyForPickup, domain.StatusDelivered, 0.49, domain.StatusReadyForPickup},
		{domain.StatusReadyForPickup, domain.StatusDelivered, 0.50, domain.StatusDelivered},
		{domain.StatusInTransit, domain.StatusInTransit, 0.99, domain.StatusInTransit},
	}
	for _, tc := range cases {
		if got := interpolatedStatus(tc.from, tc.to, tc.t); got != tc.want {
			t.Errorf("interpolatedStatus(%s, %s, %.2f) = %s, want %s", tc.from, tc.to, tc.t, got, tc.want)
		}
	}
}

func TestBuildWaypoints_DensifiesRoute(t *testing.T) {
	route := testRoute()
	wps := BuildWaypoints(route, nil, nil, GeneratorConfig{StepsPerSegment: 5})

	// Origin + 3 segments of (4 interpolated + arrival).
	if want := 1 + 3*5; len(wps) != want {
		t.Fatalf("expected %d waypoints, got %d", want, len(wps))
	}

	first := wps[0]
	if first.Seq == nil || *first.Seq != 0 || first.Status != domain.StatusCollected {
		t.Errorf("first waypoint should be the origin checkpoint, got %+v", first)
	}

	last := wps[len(wps)-1]
	if last.Seq == nil || *last.Seq != 3 || last.Status != domain.StatusReadyForPickup {
		t.Errorf("last waypoint should be the terminal checkpoint, got %+v", last)
	}

	// Interpolated steps carry no sequence number.
	seqCount := 0
	for _, wp := range wps {
		if wp.Seq != nil {
			seqCount++
		}
	}
	if seqCount != len(route) {
		t.Errorf("expected %d checkpoint waypoints, got %d", len(route), seqCount)
	}
}

func TestBuildWaypoints_DwellInjection(t *testing.T) {
	route := testRoute()
	dwell := 1
	wps := BuildWaypoints(route, nil, &dwell, GeneratorConfig{StepsPerSegment: 5, DwellTicks: 5})

	// Find the stale arrival: seq=1 reported with the departure status.
	staleIdx := -1
	for i, wp := range wps {
		if wp.Seq != nil && *wp.Seq == 1 && wp.Status == domain.StatusCollected {
			staleIdx = i
			break
		}
	}
	if staleIdx < 0 {
		t.Fatal("expected a stale-status arrival at the flagged checkpoint")
	}

	for k := 1; k <= 5; k++ {
		hold := wps[staleIdx+k]
		if hold.Seq != nil || hold.Status != domain.StatusCollected {
			t.Fatalf("dwell waypoint %d should hold stale status without seq, got %+v", k, hold)
		}
	}

	truth := wps[staleIdx+6]
	if truth.Seq == nil || *truth.Seq != 1 || truth.Status != domain.StatusInTransit {
		t.Fatalf("expected true-status arrival after dwell, got %+v", truth)
	}
}

func TestBuildWaypoints_ResumesFromRealtime(t *testing.T) {
	route := testRoute()
	full := BuildWaypoints(route, nil, nil, GeneratorConfig{StepsPerSegment: 5})

	// Park the shipment on a waypoint deep in the path.
	at := full[12]
	resumed := BuildWaypoints(route, &domain.RealtimePosition{
		ShipmentID: "ship-1",
		Lng:        at.Lng,
		Lat:        at.Lat,
		Status:     at.Status,
	}, nil, GeneratorConfig{StepsPerSegment: 5})

	if len(resumed) != len(full)-12 {
		t.Fatalf("expected resume to skip 12 waypoints, got %d of %d", len(resumed), len(full))
	}
	if resumed[0].Lng != at.Lng || resumed[0].Lat != at.Lat {
		t.Errorf("resume should start at the parked position, got %+v", resumed[0])
	}
}

func TestBuildWaypoints_TerminalPosition(t *testing.T) {
	route := testRoute()
	last := route[len(route)-1]

	wps := BuildWaypoints(route, &domain.RealtimePosition{
		ShipmentID: "ship-1",
		Lng:        last.Lng,
		Lat:        last.Lat,
		Status:     last.Status,
	}, nil, GeneratorConfig{StepsPerSegment: 5})

	if len(wps) != 1 {
		t.Fatalf("expected a single terminal waypoint, got %d", len(wps))
	}
}

func TestBuildWaypoints_TooFewPoints(t *testing.T) {
	if wps := BuildWaypoints(testRoute()[:1], nil, nil, GeneratorConfig{}); wps != nil {
		t.Fatalf("expected nil for a single-point route, got %d waypoints", len(wps))
	}
}
