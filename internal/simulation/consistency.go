package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
	"github.com/dyecteam/parcel-tracking/internal/core/ports"
)

// Checker compares the status reported at a checkpoint with the status the
// route plan expects there, and raises or clears the shipment's exception
// reason accordingly.
type Checker struct {
	shipments ports.ShipmentStore
	routes    ports.RouteStore
	log       zerolog.Logger
}

func NewChecker(shipments ports.ShipmentStore, routes ports.RouteStore, log zerolog.Logger) *Checker {
	return &Checker{shipments: shipments, routes: routes, log: log}
}

// CheckSequence validates the reported status against the route point with
// the given sequence number. Events without a matching route point, or route
// points without a planned status, are trivially consistent. The check is
// idempotent: a repeated mismatch rewrites the same reason, a repeated match
// re-clears it.
func (c *Checker) CheckSequence(ctx context.Context, shipmentID string, seq int, reported domain.ShipmentStatus) (domain.ConsistencyResult, error) {
	point, err := c.routes.GetRoutePointAt(ctx, shipmentID, seq)
	if err != nil {
		if errors.Is(err, domain.ErrRoutePointNotFound) {
			return domain.ConsistencyResult{Match: true}, nil
		}
		return domain.ConsistencyResult{}, fmt.Errorf("consistency check: %w", err)
	}
	if point.Status == "" {
		return domain.ConsistencyResult{Match: true}, nil
	}

	expected := point.Status
	if expected != reported {
		reason := fmt.Sprintf("realtime status mismatch (expected: %s, reported: %s)", expected, reported)
		if err := c.shipments.SetExceptionReason(ctx, shipmentID, &reason); err != nil {
			return domain.ConsistencyResult{}, fmt.Errorf("consistency check: flag exception: %w", err)
		}

		c.log.Warn().
			Str("shipment_id", shipmentID).
			Int("seq", seq).
			Str("expected", string(expected)).
			Str("reported", string(reported)).
			Msg("status mismatch detected")

		return domain.ConsistencyResult{Match: false, Expected: &expected}, nil
	}

	if err := c.shipments.SetExceptionReason(ctx, shipmentID, nil); err != nil {
		return domain.ConsistencyResult{}, fmt.Errorf("consistency check: clear exception: %w", err)
	}
	return domain.ConsistencyResult{Match: true, Expected: &expected}, nil
}
