package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

// Resetter rewinds a shipment to its route origin and restarts its simulator.
type Resetter interface {
	Reset(ctx context.Context, trackingCode string) error
}

// TrackingHandler handles HTTP requests for shipment tracking.
type TrackingHandler struct {
	service  ports.TrackingService
	resetter Resetter
}

func NewTrackingHandler(service ports.TrackingService, resetter Resetter) *TrackingHandler {
	return &TrackingHandler{service: service, resetter: resetter}
}

// List handles GET /v1/shipments.
//
// @Summary      List all shipments
// @Tags         tracking
// @Produce      json
// @Success      200  {object}  listShipmentsResponse
// @Failure      500  {object}  map[string]string
// @Router       /v1/shipments [get]
func (h *TrackingHandler) List(c echo.Context) error {
	shipments, err := h.service.ListShipments(c.Request().Context())
	if err != nil {
		return err
	}

	resp := listShipmentsResponse{Shipments: make([]shipmentSummaryResponse, 0, len(shipments))}
	for _, s := range shipments {
		resp.Shipments = append(resp.Shipments, toShipmentSummary(s))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/tracking/:tracking_code.
//
// @Summary      Get tracking detail for a shipment
// @Tags         tracking
// @Produce      json
// @Param        tracking_code  path      string  true  "Tracking code (e.g. 434894534579619)"
// @Success      200            {object}  trackingDetailResponse
// @Failure      404            {object}  map[string]string
// @Failure      500            {object}  map[string]string
// @Router       /v1/tracking/{tracking_code} [get]
func (h *TrackingHandler) Get(c echo.Context) error {
	trackingCode := c.Param("tracking_code")

	detail, err := h.service.GetTrackingDetail(c.Request().Context(), trackingCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTrackingDetail(detail))
}

// Reset handles POST /v1/tracking/:tracking_code/reset.
//
// @Summary      Rewind a shipment to its route origin and restart simulation
// @Tags         tracking
// @Produce      json
// @Param        tracking_code  path      string  true  "Tracking code"
// @Success      200            {object}  resetResponse
// @Failure      404            {object}  map[string]string
// @Failure      422            {object}  map[string]string
// @Router       /v1/tracking/{tracking_code}/reset [post]
func (h *TrackingHandler) Reset(c echo.Context) error {
	trackingCode := c.Param("tracking_code")

	if err := h.resetter.Reset(c.Request().Context(), trackingCode); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resetResponse{TrackingCode: trackingCode, Reset: true})
}
