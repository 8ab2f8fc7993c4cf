package service

import (
	"time"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// EstimateArrival computes the estimated arrival for a shipment. With no base
// time the estimate is unknown (nil). Same-region deliveries always take one
// day; cross-region deliveries scale with the number of route hops, capped at
// three days.
func EstimateArrival(base *time.Time, sameRegion bool, hopCount int) *time.Time {
	if base == nil {
		return nil
	}

	addDays := 1
	if !sameRegion {
		switch {
		case hopCount <= 2:
			addDays = 1
		case hopCount == 3:
			addDays = 2
		default:
			addDays = 3
		}
	}

	eta := base.AddDate(0, 0, addDays)
	return &eta
}

// ArrivalBaseTime picks the reference time an ETA is computed from: the first
// route point's timestamp when available, otherwise shipped, paid, then
// created time.
func ArrivalBaseTime(s *domain.Shipment, route []domain.RoutePoint) *time.Time {
	if len(route) > 0 && !route[0].Time.IsZero() {
		t := route[0].Time
		return &t
	}
	if s == nil {
		return nil
	}
	if s.ShippedAt != nil {
		return s.ShippedAt
	}
	if s.PaidAt != nil {
		return s.PaidAt
	}
	if !s.CreatedAt.IsZero() {
		t := s.CreatedAt
		return &t
	}
	return nil
}

// EstimateShipmentArrival combines base-time selection with the arrival rule.
func EstimateShipmentArrival(s *domain.Shipment, route []domain.RoutePoint) *time.Time {
	sameRegion := s != nil &&
		s.Sender.Province != "" &&
		s.Sender.Province == s.Receiver.Province

	return EstimateArrival(ArrivalBaseTime(s, route), sameRegion, len(route))
}
