package geo

import "culture_hotspots/internal/domain"

// Nearby pairs a hotspot with its distance from a query centre.
type Nearby struct {
	Hotspot    domain.Hotspot
	DistanceKm float64
}

// WithCoordinates keeps hotspots that have a resolved location.
func WithCoordinates(hs []domain.Hotspot) []domain.Hotspot {
	out := make([]domain.Hotspot, 0, len(hs))
	for _, h := range hs {
		if h.Location != nil {
			out = append(out, h)
		}
	}
	return out
}

// WithinBoundingBox applies an inclusive range test on both axes. Bounds are
// used as given: min > max simply matches nothing.
func WithinBoundingBox(hs []domain.Hotspot, b domain.Bounds) []domain.Hotspot {
	out := make([]domain.Hotspot, 0)
	for _, h := range hs {
		if h.Location == nil {
			continue
		}
		lat, lon := h.Location.Lat(), h.Location.Lon()
		if lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon {
			out = append(out, h)
		}
	}
	return out
}

// WithinRadius returns hotspots whose Haversine distance from the centre is
// at most radiusKm, in input order.
func WithinRadius(hs []domain.Hotspot, centerLat, centerLon, radiusKm float64) []Nearby {
	out := make([]Nearby, 0)
	for _, h := range hs {
		if h.Location == nil {
			continue
		}
		d := HaversineKm(centerLat, centerLon, h.Location.Lat(), h.Location.Lon())
		if d <= radiusKm {
			out = append(out, Nearby{Hotspot: h, DistanceKm: d})
		}
	}
	return out
}
