// Package realtime fans simulated position events out to live subscribers.
package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/api/metrics"
	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// Connection is one subscriber endpoint, typically a WebSocket wrapper. Send
// must be safe for concurrent use.
type Connection interface {
	Send(evt domain.EnrichedEvent) error
}

// Simulation is the engine surface the hub drives: it starts a simulator when
// a shipment gains its first watcher, stops it when the last one leaves, and
// serves catch-up snapshots.
type Simulation interface {
	StartSimulator(ctx context.Context, trackingCode string) error
	StopSimulator(trackingCode string)
	Snapshot(ctx context.Context, trackingCode string) (*domain.EnrichedEvent, error)
}

// Hub routes enriched events to the connections watching each tracking code.
// It implements the engine's Publisher interface.
type Hub struct {
	sim Simulation
	log zerolog.Logger

	mu   sync.RWMutex
	subs map[string]map[Connection]struct{}
}

func NewHub(sim Simulation, log zerolog.Logger) *Hub {
	return &Hub{
		sim:  sim,
		log:  log,
		subs: make(map[string]map[Connection]struct{}),
	}
}

// Subscribe registers the connection for a tracking code, sends it a one-shot
// snapshot of the shipment's current state, and starts the simulator when
// this is the code's first watcher.
func (h *Hub) Subscribe(ctx context.Context, trackingCode string, conn Connection) error {
	snap, err := h.sim.Snapshot(ctx, trackingCode)
	if err != nil {
		return err
	}

	h.mu.Lock()
	set, ok := h.subs[trackingCode]
	if !ok {
		set = make(map[Connection]struct{})
		h.subs[trackingCode] = set
	}
	set[conn] = struct{}{}
	first := len(set) == 1
	count := len(set)
	h.mu.Unlock()

	metrics.ActiveSubscribers.WithLabelValues(trackingCode).Set(float64(count))

	if err := conn.Send(*snap); err != nil {
		h.log.Warn().Err(err).Str("tracking_code", trackingCode).Msg("snapshot delivery failed")
	}

	if first {
		if err := h.sim.StartSimulator(ctx, trackingCode); err != nil {
			h.log.Error().Err(err).Str("tracking_code", trackingCode).Msg("simulator start failed")
		}
	}

	h.log.Debug().Str("tracking_code", trackingCode).Int("subscribers", count).Msg("subscriber joined")
	return nil
}

// Unsubscribe removes the connection. The simulator stops when the last
// watcher for a tracking code leaves.
func (h *Hub) Unsubscribe(trackingCode string, conn Connection) {
	h.mu.Lock()
	set, ok := h.subs[trackingCode]
	if ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, trackingCode)
		}
	}
	count := len(set)
	h.mu.Unlock()

	if !ok {
		return
	}

	metrics.ActiveSubscribers.WithLabelValues(trackingCode).Set(float64(count))
	if count == 0 {
		h.sim.StopSimulator(trackingCode)
	}

	h.log.Debug().Str("tracking_code", trackingCode).Int("subscribers", count).Msg("subscriber left")
}

// Broadcast delivers the event to every watcher of the tracking code. A
// failed connection is logged and skipped, never aborting the fan-out.
func (h *Hub) Broadcast(trackingCode string, evt domain.EnrichedEvent) {
	h.mu.RLock()
	conns := make([]Connection, 0, len(h.subs[trackingCode]))
	for conn := range h.subs[trackingCode] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(evt); err != nil {
			metrics.FanoutFailuresTotal.Inc()
			h.log.Warn().Err(err).Str("tracking_code", trackingCode).Msg("event delivery failed")
		}
	}
}

// Subscribers reports the current watcher count for a tracking code.
func (h *Hub) Subscribers(trackingCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[trackingCode])
}
