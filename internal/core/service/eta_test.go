package service

import (
	"testing"
	"time"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

func TestEstimateArrival_NilBase(t *testing.T) {
	if got := EstimateArrival(nil, false, 4); got != nil {
		t.Fatalf("expected nil eta without base time, got %v", got)
	}
}

func TestEstimateArrival_SameRegionAlwaysOneDay(t *testing.T) {
	base := time.Date(2025, 11, 16, 22, 0, 0, 0, time.UTC)

	for _, hops := range []int{1, 3, 6} {
		got := EstimateArrival(&base, true, hops)
		if got == nil || !got.Equal(base.AddDate(0, 0, 1)) {
			t.Errorf("hops=%d: expected +1 day, got %v", hops, got)
		}
	}
}

func TestEstimateArrival_CrossRegionScalesWithHops(t *testing.T) {
	base := time.Date(2025, 11, 16, 22, 0, 0, 0, time.UTC)

	cases := []struct {
		hops int
		days int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 3},
		{9, 3},
	}
	for _, tc := range cases {
		got := EstimateArrival(&base, false, tc.hops)
		if got == nil || !got.Equal(base.AddDate(0, 0, tc.days)) {
			t.Errorf("hops=%d: expected +%d days, got %v", tc.hops, tc.days, got)
		}
	}
}

func TestArrivalBaseTime_Preference(t *testing.T) {
	created := time.Date(2025, 11, 16, 20, 15, 0, 0, time.UTC)
	paid := created.Add(time.Minute)
	shipped := created.Add(2 * time.Hour)
	firstPoint := created.Add(3 * time.Hour)

	s := &domain.Shipment{CreatedAt: created, PaidAt: &paid, ShippedAt: &shipped}
	route := []domain.RoutePoint{{Seq: 0, Time: firstPoint}}

	if got := ArrivalBaseTime(s, route); got == nil || !got.Equal(firstPoint) {
		t.Errorf("expected first route point time, got %v", got)
	}
	if got := ArrivalBaseTime(s, nil); got == nil || !got.Equal(shipped) {
		t.Errorf("expected shipped time, got %v", got)
	}

	s.ShippedAt = nil
	if got := ArrivalBaseTime(s, nil); got == nil || !got.Equal(paid) {
		t.Errorf("expected paid time, got %v", got)
	}

	s.PaidAt = nil
	if got := ArrivalBaseTime(s, nil); got == nil || !got.Equal(created) {
		t.Errorf("expected created time, got %v", got)
	}

	if got := ArrivalBaseTime(&domain.Shipment{}, nil); got != nil {
		t.Errorf("expected nil base for empty shipment, got %v", got)
	}
}
