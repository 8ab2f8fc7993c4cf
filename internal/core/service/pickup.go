package service

import (
	"fmt"
	"hash/fnv"

	"github.com/dyecteam/parcel-tracking/internal/core/domain"
)

// GeneratePickupCode derives a shelf code of the form "R<area>-<row>-<idx>"
// from the shipment id and route sequence. Deliberately deterministic: the
// same (shipment, seq) always reproduces the same code, so a reset followed
// by a re-run issues an identical code.
func GeneratePickupCode(shipmentID string, seq int) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(shipmentID))
	n := int(h.Sum32() % 1_000_000)

	area := (n % 6) + 1
	row := (seq % 6) + 1
	idx := 10 + ((n*13 + seq*7) % 90)

	return fmt.Sprintf("R%d-%d-%d", area, row, idx)
}

// PickupStationName names the collection point for a route point, falling
// back to a generic label when the checkpoint has no city.
func PickupStationName(p *domain.RoutePoint) string {
	if p != nil && p.PickupStation != nil && *p.PickupStation != "" {
		return *p.PickupStation
	}
	if p != nil && p.City != "" {
		return p.City + " pickup point"
	}
	return "pickup point"
}
