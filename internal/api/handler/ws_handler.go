package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/realtime"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Demo service, same-origin policy is not enforced.
	CheckOrigin: func(*http.Request) bool { return true },
}

// subscribeRequest is the first (and only) message a client sends.
type subscribeRequest struct {
	Type         string `json:"type" validate:"required,oneof=subscribe"`
	TrackingCode string `json:"tracking_code" validate:"required"`
}

// wsConnection adapts a websocket connection to the hub's Connection
// interface. Writes are serialised; gorilla allows one concurrent writer.
type wsConnection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConnection) Send(evt domain.EnrichedEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.conn.WriteJSON(evt)
}

// WSHandler upgrades tracking clients to WebSocket and bridges them onto the
// fan-out hub.
type WSHandler struct {
	hub *realtime.Hub
	log zerolog.Logger
}

func NewWSHandler(hub *realtime.Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// Subscribe handles GET /ws. The client sends a single subscribe message and
// then receives a snapshot followed by live enriched events until it
// disconnects.
func (h *WSHandler) Subscribe(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	var req subscribeRequest
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "expected a subscribe message with a tracking_code"})
		return nil
	}
	if err := c.Validate(&req); err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return nil
	}

	ws := &wsConnection{conn: conn}
	if err := h.hub.Subscribe(c.Request().Context(), req.TrackingCode, ws); err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "shipment not found"})
		return nil
	}
	defer h.hub.Unsubscribe(req.TrackingCode, ws)

	h.log.Debug().Str("tracking_code", req.TrackingCode).Msg("websocket subscriber connected")

	// Drain the connection until the client goes away. Further client
	// messages are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
