package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

type fakeSim struct {
	mu       sync.Mutex
	started  []string
	stopped  []string
	snapErr  error
	snapshot domain.EnrichedEvent
}

func (f *fakeSim) StartSimulator(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, code)
	return nil
}

func (f *fakeSim) StopSimulator(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, code)
}

func (f *fakeSim) Snapshot(_ context.Context, code string) (*domain.EnrichedEvent, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	snap := f.snapshot
	snap.TrackingCode = code
	return &snap, nil
}

type fakeConn struct {
	mu     sync.Mutex
	events []domain.EnrichedEvent
	err    error
}

func (c *fakeConn) Send(evt domain.EnrichedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *fakeConn) received() []domain.EnrichedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.EnrichedEvent(nil), c.events...)
}

func TestSubscribe_SnapshotAndStart(t *testing.T) {
	sim := &fakeSim{snapshot: domain.EnrichedEvent{Type: domain.EventTypeRealtime, StatusMatch: true}}
	hub := NewHub(sim, zerolog.Nop())
	conn := &fakeConn{}

	if err := hub.Subscribe(context.Background(), "434894534579619", conn); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	got := conn.received()
	if len(got) != 1 || got[0].TrackingCode != "434894534579619" {
		t.Fatalf("expected one snapshot delivery, got %+v", got)
	}
	if len(sim.started) != 1 {
		t.Fatalf("expected simulator started once, got %v", sim.started)
	}
}

func TestSubscribe_SecondWatcherDoesNotRestart(t *testing.T) {
	sim := &fakeSim{}
	hub := NewHub(sim, zerolog.Nop())

	_ = hub.Subscribe(context.Background(), "c1", &fakeConn{})
	_ = hub.Subscribe(context.Background(), "c1", &fakeConn{})

	if len(sim.started) != 1 {
		t.Fatalf("expected one simulator start for two watchers, got %v", sim.started)
	}
	if hub.Subscribers("c1") != 2 {
		t.Fatalf("expected 2 subscribers, got %d", hub.Subscribers("c1"))
	}
}

func TestSubscribe_SnapshotErrorRejects(t *testing.T) {
	sim := &fakeSim{snapErr: domain.ErrShipmentNotFound}
	hub := NewHub(sim, zerolog.Nop())

	err := hub.Subscribe(context.Background(), "nope", &fakeConn{})
	if !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(sim.started) != 0 {
		t.Error("simulator must not start for a rejected subscription")
	}
}

func TestUnsubscribe_LastWatcherStopsSimulator(t *testing.T) {
	sim := &fakeSim{}
	hub := NewHub(sim, zerolog.Nop())
	a, b := &fakeConn{}, &fakeConn{}

	_ = hub.Subscribe(context.Background(), "c1", a)
	_ = hub.Subscribe(context.Background(), "c1", b)

	hub.Unsubscribe("c1", a)
	if len(sim.stopped) != 0 {
		t.Fatal("simulator must keep running while watchers remain")
	}

	hub.Unsubscribe("c1", b)
	if len(sim.stopped) != 1 {
		t.Fatalf("expected simulator stopped once, got %v", sim.stopped)
	}
}

func TestBroadcast_SkipsFailedConnections(t *testing.T) {
	sim := &fakeSim{}
	hub := NewHub(sim, zerolog.Nop())
	ok, broken := &fakeConn{}, &fakeConn{err: errors.New("gone")}

	_ = hub.Subscribe(context.Background(), "c1", ok)
	_ = hub.Subscribe(context.Background(), "c1", broken)

	hub.Broadcast("c1", domain.EnrichedEvent{Type: domain.EventTypeRealtime, TrackingCode: "c1"})

	// Snapshot + broadcast on the healthy connection.
	if got := ok.received(); len(got) != 2 {
		t.Fatalf("expected healthy connection to get the broadcast, got %d events", len(got))
	}
}

func TestBroadcast_NoWatchersIsNoOp(t *testing.T) {
	hub := NewHub(&fakeSim{}, zerolog.Nop())
	hub.Broadcast("silent", domain.EnrichedEvent{TrackingCode: "silent"})
}
