package handler

import (
	"time"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

// --- Response types ---

type addressResponse struct {
	Province string  `json:"province"`
	City     string  `json:"city"`
	Detail   string  `json:"detail"`
	Lng      float64 `json:"lng"`
	Lat      float64 `json:"lat"`
}

type shipmentSummaryResponse struct {
	TrackingCode    string  `json:"tracking_code"`
	OrderNo         string  `json:"order_no"`
	Title           string  `json:"title"`
	ShopName        string  `json:"shop_name"`
	Status          string  `json:"status"`
	ExceptionReason *string `json:"exception_reason,omitempty"`
	ETA             *string `json:"eta_time,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type listShipmentsResponse struct {
	Shipments []shipmentSummaryResponse `json:"shipments"`
}

type routePointResponse struct {
	Seq           int     `json:"seq"`
	Lng           float64 `json:"lng"`
	Lat           float64 `json:"lat"`
	City          string  `json:"city"`
	Status        string  `json:"status"`
	Description   string  `json:"description"`
	Time          string  `json:"time"`
	PickupCode    *string `json:"pickup_code,omitempty"`
	PickupStation *string `json:"pickup_station,omitempty"`
}

type realtimeResponse struct {
	Lng       float64 `json:"lng"`
	Lat       float64 `json:"lat"`
	Status    string  `json:"status"`
	ETA       *string `json:"eta_time,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

type pickupResponse struct {
	Seq     int    `json:"seq"`
	Code    string `json:"code"`
	Station string `json:"station"`
}

type trackingDetailResponse struct {
	TrackingCode    string               `json:"tracking_code"`
	OrderNo         string               `json:"order_no"`
	Title           string               `json:"title"`
	ShopName        string               `json:"shop_name"`
	Status          string               `json:"status"`
	LogisticsStatus string               `json:"logistics_status"`
	ExceptionReason *string              `json:"exception_reason,omitempty"`
	ETA             *string              `json:"eta_time,omitempty"`
	Sender          addressResponse      `json:"sender"`
	Receiver        addressResponse      `json:"receiver"`
	Route           []routePointResponse `json:"route"`
	Realtime        *realtimeResponse    `json:"realtime,omitempty"`
	Pickup          *pickupResponse      `json:"pickup,omitempty"`
}

type resetResponse struct {
	TrackingCode string `json:"tracking_code"`
	Reset        bool   `json:"reset"`
}

// --- Mappers ---

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func toShipmentSummary(s *domain.Shipment) shipmentSummaryResponse {
	return shipmentSummaryResponse{
		TrackingCode:    s.TrackingCode,
		OrderNo:         s.OrderNo,
		Title:           s.Title,
		ShopName:        s.ShopName,
		Status:          s.Status,
		ExceptionReason: s.ExceptionReason,
		ETA:             formatTimePtr(s.ETA),
		CreatedAt:       formatTime(s.CreatedAt),
	}
}

func toAddress(a domain.Address) addressResponse {
	return addressResponse{
		Province: a.Province,
		City:     a.City,
		Detail:   a.Detail,
		Lng:      a.Lng,
		Lat:      a.Lat,
	}
}

func toTrackingDetail(d *ports.TrackingDetail) trackingDetailResponse {
	resp := trackingDetailResponse{
		TrackingCode:    d.Shipment.TrackingCode,
		OrderNo:         d.Shipment.OrderNo,
		Title:           d.Shipment.Title,
		ShopName:        d.Shipment.ShopName,
		Status:          d.Shipment.Status,
		LogisticsStatus: string(d.LogisticsStatus),
		ExceptionReason: d.Shipment.ExceptionReason,
		ETA:             formatTimePtr(d.Shipment.ETA),
		Sender:          toAddress(d.Shipment.Sender),
		Receiver:        toAddress(d.Shipment.Receiver),
		Route:           make([]routePointResponse, 0, len(d.Route)),
	}

	for _, p := range d.Route {
		resp.Route = append(resp.Route, routePointResponse{
			Seq:           p.Seq,
			Lng:           p.Lng,
			Lat:           p.Lat,
			City:          p.City,
			Status:        string(p.Status),
			Description:   p.Description,
			Time:          formatTime(p.Time),
			PickupCode:    p.PickupCode,
			PickupStation: p.PickupStation,
		})
	}

	if d.Realtime != nil {
		resp.Realtime = &realtimeResponse{
			Lng:       d.Realtime.Lng,
			Lat:       d.Realtime.Lat,
			Status:    string(d.Realtime.Status),
			ETA:       formatTimePtr(d.Realtime.ETA),
			UpdatedAt: formatTime(d.Realtime.UpdatedAt),
		}
	}
	if d.Pickup != nil {
		resp.Pickup = &pickupResponse{
			Seq:     d.Pickup.Seq,
			Code:    d.Pickup.Code,
			Station: d.Pickup.Station,
		}
	}

	return resp
}
