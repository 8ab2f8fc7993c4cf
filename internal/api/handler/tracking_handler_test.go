package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

type stubTrackingService struct {
	listFn   func(ctx context.Context) ([]*domain.Shipment, error)
	detailFn func(ctx context.Context, trackingCode string) (*ports.TrackingDetail, error)
}

func (s *stubTrackingService) ListShipments(ctx context.Context) ([]*domain.Shipment, error) {
	return s.listFn(ctx)
}

func (s *stubTrackingService) GetTrackingDetail(ctx context.Context, trackingCode string) (*ports.TrackingDetail, error) {
	return s.detailFn(ctx, trackingCode)
}

type stubResetter struct {
	resetFn func(ctx context.Context, trackingCode string) error
}

func (s *stubResetter) Reset(ctx context.Context, trackingCode string) error {
	return s.resetFn(ctx, trackingCode)
}

func testDetail() *ports.TrackingDetail {
	eta := time.Date(2025, 11, 18, 22, 0, 0, 0, time.UTC)
	return &ports.TrackingDetail{
		Shipment: &domain.Shipment{
			ID:           "ship-1",
			TrackingCode: "434894534579619",
			OrderNo:      "2025111602125290",
			Title:        "Wireless earbuds",
			ShopName:     "Sunrise Electronics",
			Status:       domain.LifecycleDelivering,
			ETA:          &eta,
			CreatedAt:    time.Date(2025, 11, 16, 20, 15, 0, 0, time.UTC),
		},
		Route: []domain.RoutePoint{
			{Seq: 0, Lng: 116.40, Lat: 39.90, City: "Beijing", Status: domain.StatusCollected, Time: time.Date(2025, 11, 16, 22, 0, 0, 0, time.UTC)},
			{Seq: 1, Lng: 117.20, Lat: 39.08, City: "Tianjin", Status: domain.StatusInTransit, Time: time.Date(2025, 11, 17, 2, 0, 0, 0, time.UTC)},
		},
		Realtime: &domain.RealtimePosition{
			ShipmentID: "ship-1",
			Lng:        116.8, Lat: 39.5,
			Status:    domain.StatusInTransit,
			UpdatedAt: time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC),
		},
		LogisticsStatus: domain.StatusInTransit,
	}
}

func TestTrackingHandler_Get_Success(t *testing.T) {
	e := echo.New()
	stub := &stubTrackingService{
		detailFn: func(_ context.Context, trackingCode string) (*ports.TrackingDetail, error) {
			if trackingCode != "434894534579619" {
				t.Fatalf("unexpected tracking code %q", trackingCode)
			}
			return testDetail(), nil
		},
	}
	h := NewTrackingHandler(stub, &stubResetter{})

	req := httptest.NewRequest(http.MethodGet, "/v1/tracking/434894534579619", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tracking_code")
	c.SetParamValues("434894534579619")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["tracking_code"] != "434894534579619" {
		t.Errorf("unexpected tracking_code: %v", resp["tracking_code"])
	}
	if resp["logistics_status"] != "in-transit" {
		t.Errorf("unexpected logistics_status: %v", resp["logistics_status"])
	}
	route, ok := resp["route"].([]any)
	if !ok || len(route) != 2 {
		t.Fatalf("expected 2 route points, got %v", resp["route"])
	}
	if _, ok := resp["realtime"].(map[string]any); !ok {
		t.Errorf("expected realtime block, got %v", resp["realtime"])
	}
}

func TestTrackingHandler_Get_NotFound(t *testing.T) {
	e := echo.New()
	stub := &stubTrackingService{
		detailFn: func(context.Context, string) (*ports.TrackingDetail, error) {
			return nil, domain.ErrShipmentNotFound
		},
	}
	h := NewTrackingHandler(stub, &stubResetter{})

	req := httptest.NewRequest(http.MethodGet, "/v1/tracking/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tracking_code")
	c.SetParamValues("nope")

	err := h.Get(c)
	if err == nil {
		t.Fatal("expected error to propagate to the error handler")
	}
}

func TestTrackingHandler_List(t *testing.T) {
	e := echo.New()
	stub := &stubTrackingService{
		listFn: func(context.Context) ([]*domain.Shipment, error) {
			return []*domain.Shipment{
				{TrackingCode: "434894534579619", OrderNo: "2025111602125290", Status: domain.LifecycleDelivering, CreatedAt: time.Now().UTC()},
				{TrackingCode: "434894534579620", OrderNo: "2025111602125291", Status: domain.LifecycleFinished, CreatedAt: time.Now().UTC()},
			}, nil
		},
	}
	h := NewTrackingHandler(stub, &stubResetter{})

	req := httptest.NewRequest(http.MethodGet, "/v1/shipments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string][]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp["shipments"]) != 2 {
		t.Fatalf("expected 2 shipments, got %d", len(resp["shipments"]))
	}
}

func TestTrackingHandler_Reset_Success(t *testing.T) {
	e := echo.New()
	called := false
	h := NewTrackingHandler(&stubTrackingService{}, &stubResetter{
		resetFn: func(_ context.Context, trackingCode string) error {
			called = true
			if trackingCode != "434894534579619" {
				t.Fatalf("unexpected tracking code %q", trackingCode)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/tracking/434894534579619/reset", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tracking_code")
	c.SetParamValues("434894534579619")

	if err := h.Reset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("resetter not invoked")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTrackingHandler_Reset_NotFound(t *testing.T) {
	e := echo.New()
	h := NewTrackingHandler(&stubTrackingService{}, &stubResetter{
		resetFn: func(context.Context, string) error {
			return domain.ErrShipmentNotFound
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/tracking/nope/reset", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tracking_code")
	c.SetParamValues("nope")

	if err := h.Reset(c); err == nil {
		t.Fatal("expected error to propagate to the error handler")
	}
}
