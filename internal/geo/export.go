package geo

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"culture_hotspots/internal/domain"
)

// MapPoint is the flat projection served to map views. Field order is
// latitude then longitude, the reverse of GeoJSON.
type MapPoint struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Type        *string  `json:"type"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	ImageURL    *string  `json:"imageUrl"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"`
}

func toMapPoint(h domain.Hotspot) MapPoint {
	return MapPoint{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Description,
		Address:     h.Address,
		Type:        h.Type,
		Latitude:    h.Location.Lat(),
		Longitude:   h.Location.Lon(),
		ImageURL:    h.ImageURL,
	}
}

// ToMapPoints projects coordinate-bearing hotspots to map points.
func ToMapPoints(hs []domain.Hotspot) []MapPoint {
	out := make([]MapPoint, 0, len(hs))
	for _, h := range hs {
		if h.Location == nil {
			continue
		}
		out = append(out, toMapPoint(h))
	}
	return out
}

// NearbyToMapPoints is ToMapPoints for radius results, carrying the distance.
func NearbyToMapPoints(ns []Nearby) []MapPoint {
	out := make([]MapPoint, 0, len(ns))
	for _, n := range ns {
		if n.Hotspot.Location == nil {
			continue
		}
		p := toMapPoint(n.Hotspot)
		d := n.DistanceKm
		p.DistanceKm = &d
		out = append(out, p)
	}
	return out
}

// ToFeatureCollection builds a GeoJSON FeatureCollection with one Point
// feature per coordinate-bearing hotspot. Coordinates are [lon, lat].
func ToFeatureCollection(hs []domain.Hotspot) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(hs))}
	for _, h := range hs {
		if h.Location == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       h.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{h.Location.Lon(), h.Location.Lat()}),
			Properties: map[string]interface{}{
				"id":          h.ID,
				"name":        strOrNil(h.Name),
				"description": strOrNil(h.Description),
				"address":     strOrNil(h.Address),
				"type":        strOrNil(h.Type),
				"imageUrl":    strOrNil(h.ImageURL),
			},
		})
	}
	return fc
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
