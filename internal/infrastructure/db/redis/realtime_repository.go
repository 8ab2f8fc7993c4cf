package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// RealtimeRepository implements ports.RealtimeStore on Redis. Each shipment
// holds exactly one JSON row under realtime:<shipment_id>; the simulator
// overwrites it on every tick, so the update-heavy hot path stays off the
// document store.
type RealtimeRepository struct {
	client *redis.Client
}

func NewRealtimeRepository(client *redis.Client) *RealtimeRepository {
	return &RealtimeRepository{client: client}
}

// Get returns the shipment's current position, or domain.ErrRealtimeNotFound
// when no event has been applied yet.
func (r *RealtimeRepository) Get(ctx context.Context, shipmentID string) (*domain.RealtimePosition, error) {
	raw, err := r.client.Get(ctx, r.key(shipmentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRealtimeNotFound
		}
		return nil, fmt.Errorf("realtime get: %w", err)
	}

	var pos domain.RealtimePosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, fmt.Errorf("realtime decode: %w", err)
	}
	return &pos, nil
}

// Upsert overwrites the shipment's position row.
func (r *RealtimeRepository) Upsert(ctx context.Context, pos *domain.RealtimePosition) error {
	raw, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("realtime encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(pos.ShipmentID), raw, 0).Err(); err != nil {
		return fmt.Errorf("realtime set: %w", err)
	}
	return nil
}

// Delete removes the shipment's position row. Used by the seeder to start
// from a clean slate.
func (r *RealtimeRepository) Delete(ctx context.Context, shipmentID string) error {
	return r.client.Del(ctx, r.key(shipmentID)).Err()
}

func (r *RealtimeRepository) key(shipmentID string) string {
	return "realtime:" + shipmentID
}
