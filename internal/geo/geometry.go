// Package geo holds the geometry parser and the pure query engine used to
// filter and project hotspots.
package geo

import (
	"encoding/json"
	"strings"

	"culture_hotspots/internal/domain"
)

type rawGeometry struct {
	Type        json.RawMessage `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeometry decodes an embedded GeoJSON-like geometry string such as
// {"coordinates": [[-79.48576, 43.685]], "type": "MultiPoint"}.
// Only the first coordinate pair is used. Any malformed input yields
// {0, 0, "Unknown"}.
func ParseGeometry(raw string) domain.GeometryPoint {
	p, _ := ResolveGeometry(raw)
	return p
}

// ResolveGeometry is ParseGeometry plus a flag telling whether a coordinate
// pair was actually found.
func ResolveGeometry(raw string) (domain.GeometryPoint, bool) {
	unknown := domain.GeometryPoint{Type: domain.GeometryUnknown}
	if strings.TrimSpace(raw) == "" {
		return unknown, false
	}

	var g rawGeometry
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return unknown, false
	}

	var points []json.RawMessage
	if err := json.Unmarshal(g.Coordinates, &points); err != nil || len(points) == 0 {
		return unknown, false
	}
	var first []float64
	if err := json.Unmarshal(points[0], &first); err != nil || len(first) < 2 {
		return unknown, false
	}

	typ := domain.GeometryUnknown
	var s string
	if err := json.Unmarshal(g.Type, &s); err == nil && s != "" {
		typ = s
	}
	return domain.GeometryPoint{X: first[0], Y: first[1], Type: typ}, true
}
