package model

import (
	"encoding/json"
	"fmt"

	"github.com/stridelands/engine/internal/geo"
	"github.com/stridelands/engine/internal/reward"
	"github.com/stridelands/engine/pkg/core"
)

// TerritoryFromCore builds the database row for a validated claim.
func TerritoryFromCore(t core.Territory) (Territory, error) {
	wkb, err := geo.RingToWKB(t.Ring)
	if err != nil {
		return Territory{}, fmt.Errorf("encoding territory boundary: %w", err)
	}
	ringJSON, err := json.Marshal(t.Ring)
	if err != nil {
		return Territory{}, fmt.Errorf("encoding territory ring: %w", err)
	}

	row := Territory{
		OwnerID:      t.OwnerID,
		Name:         t.Name,
		Boundary:     wkb,
		Ring:         ringJSON,
		AreaM2:       t.AreaM2,
		MinLatitude:  t.Bounds.MinLatitude,
		MinLongitude: t.Bounds.MinLongitude,
		MaxLatitude:  t.Bounds.MaxLatitude,
		MaxLongitude: t.Bounds.MaxLongitude,
		ClaimedAt:    t.ClaimedAt,
	}
	row.ID = t.ID
	return row, nil
}

// TerritoryToCore rebuilds the domain record from a database row. The ring
// is decoded from WKB; the JSON column is only for export consumers.
func (t Territory) TerritoryToCore() (core.Territory, error) {
	ring, err := geo.RingFromWKB(t.Boundary)
	if err != nil {
		return core.Territory{}, fmt.Errorf("decoding territory boundary: %w", err)
	}
	return core.Territory{
		ID:      t.ID,
		OwnerID: t.OwnerID,
		Name:    t.Name,
		Ring:    ring,
		AreaM2:  t.AreaM2,
		Bounds: core.Bounds{
			MinLatitude:  t.MinLatitude,
			MinLongitude: t.MinLongitude,
			MaxLatitude:  t.MaxLatitude,
			MaxLongitude: t.MaxLongitude,
		},
		ClaimedAt: t.ClaimedAt,
	}, nil
}

// ExplorationRunFromCore builds the database row for a completed run. The
// reward tier is computed here so it is stored alongside the distance.
func ExplorationRunFromCore(r core.ExplorationRun) ExplorationRun {
	row := ExplorationRun{
		OwnerID:        r.OwnerID,
		DistanceMeters: r.DistanceMeters,
		SampleCount:    r.SampleCount,
		Tier:           reward.TierFor(r.DistanceMeters).String(),
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
	}
	row.ID = r.ID
	return row
}

// ExplorationRunToCore rebuilds the domain record from a database row.
func (r ExplorationRun) ExplorationRunToCore() core.ExplorationRun {
	return core.ExplorationRun{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		DistanceMeters: r.DistanceMeters,
		SampleCount:    r.SampleCount,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
	}
}
