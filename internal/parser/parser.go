// Package parser converts raw dispatcher event arguments into domain
// records. It is pure: no storage access, no caches, no callbacks.
package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/stridelands/engine/pkg/core"
)

// Parser provides pure []string -> domain struct conversion.
// It has zero external dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// parseTimestamp accepts either unix seconds (possibly fractional) or RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(secs)
		nsec := int64((secs - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseFix parses a location fix from raw args:
// [latitude, longitude, accuracyMeters, timestamp].
func (p *Parser) ParseFix(data []string) (core.Fix, error) {
	var fix core.Fix

	if len(data) < 4 {
		return fix, fmt.Errorf("fix requires 4 args, got %d", len(data))
	}

	lat, err := strconv.ParseFloat(data[0], 64)
	if err != nil {
		return fix, fmt.Errorf("error parsing latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return fix, fmt.Errorf("latitude out of range: %v", lat)
	}
	fix.Point.Latitude = lat

	lon, err := strconv.ParseFloat(data[1], 64)
	if err != nil {
		return fix, fmt.Errorf("error parsing longitude: %w", err)
	}
	if lon < -180 || lon > 180 {
		return fix, fmt.Errorf("longitude out of range: %v", lon)
	}
	fix.Point.Longitude = lon

	acc, err := strconv.ParseFloat(data[2], 64)
	if err != nil {
		return fix, fmt.Errorf("error parsing accuracy: %w", err)
	}
	fix.AccuracyMeters = acc

	fix.ObservedAt, err = parseTimestamp(data[3])
	if err != nil {
		return fix, err
	}

	return fix, nil
}

// SessionStart holds parsed session start parameters.
type SessionStart struct {
	Kind    core.SessionKind
	OwnerID string
}

// ParseSessionStart parses session start data: [kind, ownerID].
// Kind is "claim" or "explore".
func (p *Parser) ParseSessionStart(data []string) (SessionStart, error) {
	var start SessionStart

	if len(data) < 2 {
		return start, fmt.Errorf("session start requires 2 args, got %d", len(data))
	}

	switch data[0] {
	case "claim":
		start.Kind = core.SessionClaim
	case "explore":
		start.Kind = core.SessionExplore
	default:
		return start, fmt.Errorf("unknown session kind: %q", data[0])
	}

	if data[1] == "" {
		return start, fmt.Errorf("empty owner id")
	}
	start.OwnerID = data[1]

	return start, nil
}

// territoryRecord is the JSON shape territory payloads arrive in.
type territoryRecord struct {
	ID        uint         `json:"id"`
	OwnerID   string       `json:"ownerId"`
	Name      string       `json:"name"`
	Ring      [][2]float64 `json:"ring"` // [lat, lon] pairs
	AreaM2    float64      `json:"areaM2"`
	ClaimedAt string       `json:"claimedAt"`
}

// ParseTerritory parses a single territory JSON payload from data[0].
func (p *Parser) ParseTerritory(data []string) (core.Territory, error) {
	var territory core.Territory

	if len(data) < 1 {
		return territory, fmt.Errorf("territory requires 1 arg, got %d", len(data))
	}

	var rec territoryRecord
	if err := json.Unmarshal([]byte(data[0]), &rec); err != nil {
		return territory, fmt.Errorf("error unmarshalling territory: %w", err)
	}

	territory.ID = rec.ID
	territory.OwnerID = rec.OwnerID
	territory.Name = rec.Name
	territory.AreaM2 = rec.AreaM2
	territory.Ring = make([]core.Point, 0, len(rec.Ring))
	for _, v := range rec.Ring {
		territory.Ring = append(territory.Ring, core.Point{Latitude: v[0], Longitude: v[1]})
	}

	if rec.ClaimedAt != "" {
		claimedAt, err := parseTimestamp(rec.ClaimedAt)
		if err != nil {
			return territory, err
		}
		territory.ClaimedAt = claimedAt
	}

	for i := range territory.Ring {
		b := &territory.Bounds
		pt := territory.Ring[i]
		if i == 0 {
			b.MinLatitude, b.MaxLatitude = pt.Latitude, pt.Latitude
			b.MinLongitude, b.MaxLongitude = pt.Longitude, pt.Longitude
			continue
		}
		if pt.Latitude < b.MinLatitude {
			b.MinLatitude = pt.Latitude
		}
		if pt.Latitude > b.MaxLatitude {
			b.MaxLatitude = pt.Latitude
		}
		if pt.Longitude < b.MinLongitude {
			b.MinLongitude = pt.Longitude
		}
		if pt.Longitude > b.MaxLongitude {
			b.MaxLongitude = pt.Longitude
		}
	}

	return territory, nil
}

// ParseTerritories parses a JSON array of territory payloads from data[0].
// Corrupt entries are skipped with a warning rather than failing the batch.
func (p *Parser) ParseTerritories(data []string) ([]core.Territory, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("territory batch requires 1 arg, got %d", len(data))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data[0]), &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling territory batch: %w", err)
	}

	territories := make([]core.Territory, 0, len(raw))
	for i, entry := range raw {
		territory, err := p.ParseTerritory([]string{string(entry)})
		if err != nil {
			p.logger.Warn("Skipping corrupt territory record", "index", i, "error", err)
			continue
		}
		territories = append(territories, territory)
	}

	return territories, nil
}
