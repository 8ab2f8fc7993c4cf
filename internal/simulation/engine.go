package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/api/metrics"
	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

// Publisher receives enriched events for fan-out to subscribers. The engine
// never blocks on it.
type Publisher interface {
	Broadcast(trackingCode string, evt domain.EnrichedEvent)
}

// PublisherFunc adapts a plain function to the Publisher interface.
type PublisherFunc func(trackingCode string, evt domain.EnrichedEvent)

func (f PublisherFunc) Broadcast(trackingCode string, evt domain.EnrichedEvent) {
	f(trackingCode, evt)
}

// Config tunes the engine. Zero values fall back to the defaults below.
type Config struct {
	// TickInterval is the delay between emitted waypoints per simulator.
	TickInterval time.Duration
	// ConsumeInterval is the consumer's polling cadence. At most one event
	// is applied per interval.
	ConsumeInterval time.Duration
	// QueueCapacity bounds the in-memory event queue.
	QueueCapacity int

	Generator GeneratorConfig
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 2 * time.Second
	}
	if c.ConsumeInterval <= 0 {
		c.ConsumeInterval = time.Second
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 1024
	}
	c.Generator = c.Generator.withDefaults()
	return c
}

// Engine owns the per-shipment simulators, the FIFO event queue and the
// single consumer that applies events in order. One consumer means at most
// one writer touches a shipment's realtime row at a time.
type Engine struct {
	cfg       Config
	shipments ports.ShipmentStore
	routes    ports.RouteStore
	realtime  ports.RealtimeStore
	checker   *Checker
	publisher Publisher
	log       zerolog.Logger

	queue chan domain.PositionEvent

	mu   sync.Mutex
	sims map[string]*simulator
}

type simulator struct {
	stop chan struct{}
}

func NewEngine(
	cfg Config,
	shipments ports.ShipmentStore,
	routes ports.RouteStore,
	realtime ports.RealtimeStore,
	checker *Checker,
	publisher Publisher,
	log zerolog.Logger,
) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:       cfg,
		shipments: shipments,
		routes:    routes,
		realtime:  realtime,
		checker:   checker,
		publisher: publisher,
		log:       log,
		queue:     make(chan domain.PositionEvent, cfg.QueueCapacity),
		sims:      make(map[string]*simulator),
	}
}

// Run drives the consumer loop until ctx is cancelled. Each tick drains at
// most one event; an empty queue is a no-op tick.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.ConsumeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.stopAll()
			return
		case <-ticker.C:
			select {
			case evt := <-e.queue:
				metrics.EventsQueueDepth.Set(float64(len(e.queue)))
				e.applyEvent(ctx, evt)
			default:
			}
		}
	}
}

// StartSimulator begins (or resumes) emitting position events for the given
// tracking code. Starting an already-running simulator is a no-op. A shipment
// already at its final checkpoint gets a single terminal event and no
// recurring task.
func (e *Engine) StartSimulator(ctx context.Context, trackingCode string) error {
	e.mu.Lock()
	if _, running := e.sims[trackingCode]; running {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	shipment, err := e.shipments.FindByTrackingCode(ctx, trackingCode)
	if err != nil {
		return fmt.Errorf("start simulator: %w", err)
	}

	route, err := e.routes.GetRoute(ctx, shipment.ID)
	if err != nil {
		return fmt.Errorf("start simulator: route: %w", err)
	}
	if len(route) < 2 {
		return fmt.Errorf("start simulator %s: %w", trackingCode, domain.ErrInsufficientRoute)
	}

	resume, err := e.realtime.Get(ctx, shipment.ID)
	if err != nil && !errors.Is(err, domain.ErrRealtimeNotFound) {
		return fmt.Errorf("start simulator: realtime: %w", err)
	}

	waypoints := BuildWaypoints(route, resume, shipment.DwellAtSeq, e.cfg.Generator)
	if len(waypoints) <= 1 {
		// Already at (or past) the final checkpoint.
		last := route[len(route)-1]
		e.enqueue(positionEvent(shipment, routePointWaypoint(last)))
		e.log.Info().Str("tracking_code", trackingCode).Msg("shipment already terminal, emitted final event only")
		return nil
	}

	sim := &simulator{stop: make(chan struct{})}
	e.mu.Lock()
	if _, running := e.sims[trackingCode]; running {
		e.mu.Unlock()
		return nil
	}
	e.sims[trackingCode] = sim
	e.mu.Unlock()

	metrics.ActiveSimulators.Inc()
	e.log.Info().
		Str("tracking_code", trackingCode).
		Int("waypoints", len(waypoints)).
		Msg("simulator started")

	go e.runSimulator(shipment, waypoints, sim)
	return nil
}

func (e *Engine) runSimulator(shipment *domain.Shipment, waypoints []Waypoint, sim *simulator) {
	defer func() {
		e.mu.Lock()
		if e.sims[shipment.TrackingCode] == sim {
			delete(e.sims, shipment.TrackingCode)
		}
		e.mu.Unlock()
		metrics.ActiveSimulators.Dec()
	}()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for _, wp := range waypoints {
		select {
		case <-sim.stop:
			return
		case <-ticker.C:
			e.enqueue(positionEvent(shipment, wp))
		}
	}

	e.log.Info().Str("tracking_code", shipment.TrackingCode).Msg("simulator finished route")
}

// StopSimulator cancels the recurring task for the given tracking code, if
// any. Already-enqueued events still flow through the consumer.
func (e *Engine) StopSimulator(trackingCode string) {
	e.mu.Lock()
	sim, ok := e.sims[trackingCode]
	if ok {
		delete(e.sims, trackingCode)
	}
	e.mu.Unlock()

	if ok {
		close(sim.stop)
		e.log.Info().Str("tracking_code", trackingCode).Msg("simulator stopped")
	}
}

// Running reports whether a simulator is currently registered for the code.
func (e *Engine) Running(trackingCode string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sims[trackingCode]
	return ok
}

func (e *Engine) stopAll() {
	e.mu.Lock()
	sims := e.sims
	e.sims = make(map[string]*simulator)
	e.mu.Unlock()

	for _, sim := range sims {
		close(sim.stop)
	}
}

// enqueue is non-blocking: when the queue is full the event is dropped and
// counted, the simulator keeps ticking.
func (e *Engine) enqueue(evt domain.PositionEvent) {
	select {
	case e.queue <- evt:
		metrics.EventsQueueDepth.Set(float64(len(e.queue)))
	default:
		metrics.EventsDroppedTotal.Inc()
		e.log.Warn().Str("tracking_code", evt.TrackingCode).Msg("event queue full, dropping event")
	}
}

func positionEvent(shipment *domain.Shipment, wp Waypoint) domain.PositionEvent {
	evt := domain.PositionEvent{
		ShipmentID:   shipment.ID,
		TrackingCode: shipment.TrackingCode,
		Lng:          wp.Lng,
		Lat:          wp.Lat,
		Status:       wp.Status,
		Seq:          wp.Seq,
		Timestamp:    time.Now().UTC(),
	}
	if wp.Time != nil {
		evt.Timestamp = *wp.Time
	}
	return evt
}
