// Command trackwatch follows a shipment from the terminal: it fetches the
// planned route, subscribes to the live event stream, and animates the
// shipment marker along the densified path the same way the map client does.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/pathengine"
	"github.com/dyecteam/parcel-tracking/internal/simulation"
	"github.com/dyecteam/parcel-tracking/pkg/logger"
)

type routeResponse struct {
	Route []domain.RoutePoint `json:"route"`
}

func fetchRoute(addr, trackingCode string) ([]domain.RoutePoint, error) {
	resp, err := http.Get(fmt.Sprintf("http://%s/v1/tracking/%s", addr, trackingCode))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracking request failed: %s", resp.Status)
	}

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, err
	}
	return rr.Route, nil
}

func densePath(route []domain.RoutePoint) []orb.Point {
	waypoints := simulation.BuildWaypoints(route, nil, nil, simulation.GeneratorConfig{})
	path := make([]orb.Point, len(waypoints))
	for i, wp := range waypoints {
		path[i] = orb.Point{wp.Lng, wp.Lat}
	}
	return path
}

func main() {
	addr := flag.String("addr", "localhost:8080", "tracking server host:port")
	code := flag.String("code", "", "tracking code to watch")
	flag.Parse()

	log := logger.Init(logger.Options{Pretty: true})
	if *code == "" {
		log.Fatal().Msg("a tracking code is required (-code)")
	}

	route, err := fetchRoute(*addr, *code)
	if err != nil {
		log.Fatal().Err(err).Msg("route fetch failed")
	}

	engine := pathengine.New()
	engine.SetPath(densePath(route))

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", u.String()).Msg("websocket dial failed")
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "subscribe", "tracking_code": *code}); err != nil {
		log.Fatal().Err(err).Msg("subscribe failed")
	}

	events := make(chan domain.EnrichedEvent, 16)
	go func() {
		defer close(events)
		for {
			var evt domain.EnrichedEvent
			if err := conn.ReadJSON(&evt); err != nil {
				log.Warn().Err(err).Msg("stream closed")
				return
			}
			events <- evt
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			observe(engine, evt)
			if evt.ExceptionReason != nil {
				log.Warn().Str("reason", *evt.ExceptionReason).Msg("shipment flagged")
			}
		case <-ticker.C:
			engine.Tick()
			render(log, engine)
		}
	}
}

func observe(engine *pathengine.Engine, evt domain.EnrichedEvent) {
	update := pathengine.Update{
		Status:    evt.LogisticsStatus,
		Exception: evt.ExceptionReason != nil,
	}
	if evt.Realtime != nil {
		lng, lat := evt.Realtime.Lng, evt.Realtime.Lat
		update.Lng = &lng
		update.Lat = &lat
	}
	engine.Observe(update)
}

func render(log zerolog.Logger, engine *pathengine.Engine) {
	pos, ok := engine.Position()
	if !ok {
		return
	}

	log.Info().
		Float64("lng", pos[0]).
		Float64("lat", pos[1]).
		Str("status", string(engine.Status())).
		Str("progress", fmt.Sprintf("%.0f%%", engine.Progress()*100)).
		Str("remaining", fmt.Sprintf("%.1fkm", engine.Remaining()/1000)).
		Bool("focused", engine.Focused()).
		Msg("position")
}
