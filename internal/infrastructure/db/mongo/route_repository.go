package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

const collectionRoutePoints = "route_points"

// RouteRepository implements ports.RouteStore on MongoDB.
type RouteRepository struct {
	col *mongo.Collection
}

func NewRouteRepository(db *mongo.Database) *RouteRepository {
	return &RouteRepository{col: db.Collection(collectionRoutePoints)}
}

// GetRoute returns the shipment's planned checkpoints ordered by sequence
// number.
func (r *RouteRepository) GetRoute(ctx context.Context, shipmentID string) ([]domain.RoutePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.RoutePoint
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRoutePointAt returns the checkpoint with the given sequence number.
func (r *RouteRepository) GetRoutePointAt(ctx context.Context, shipmentID string, seq int) (*domain.RoutePoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.RoutePoint
	err := r.col.FindOne(ctx, bson.M{"shipment_id": shipmentID, "seq": seq}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoutePointNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SetPickupCode writes the pickup code and station onto a checkpoint.
func (r *RouteRepository) SetPickupCode(ctx context.Context, routePointID, code, station string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": routePointID},
		bson.M{"$set": bson.M{"pickup_code": code, "pickup_station": station}},
	)
	return err
}

// ClearPickupCodes removes pickup codes from every checkpoint of a shipment.
func (r *RouteRepository) ClearPickupCodes(ctx context.Context, shipmentID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"shipment_id": shipmentID},
		bson.M{"$unset": bson.M{"pickup_code": "", "pickup_station": ""}},
	)
	return err
}

// FirstPickupInfo returns the lowest-sequence checkpoint carrying a pickup
// code, or nil when none exists.
func (r *RouteRepository) FirstPickupInfo(ctx context.Context, shipmentID string) (*domain.PickupInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"shipment_id": shipmentID, "pickup_code": bson.M{"$exists": true, "$ne": nil}}
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: 1}})

	var p domain.RoutePoint
	err := r.col.FindOne(ctx, filter, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	info := &domain.PickupInfo{Seq: p.Seq}
	if p.PickupCode != nil {
		info.Code = *p.PickupCode
	}
	if p.PickupStation != nil {
		info.Station = *p.PickupStation
	}
	return info, nil
}

// InsertRoute creates the checkpoint documents for a shipment. Used by the
// seeder.
func (r *RouteRepository) InsertRoute(ctx context.Context, points []domain.RoutePoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]any, len(points))
	for i := range points {
		docs[i] = points[i]
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

// DeleteAll drops every checkpoint document. Used by the seeder.
func (r *RouteRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

// EnsureIndexes creates necessary indexes on the route points collection.
func (r *RouteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "seq", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
