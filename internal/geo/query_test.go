package geo_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/geo"
)

func ptr[T any](v T) *T { return &v }

func spot(id string, lat, lon float64) domain.Hotspot {
	return domain.Hotspot{
		ID:       id,
		Name:     ptr("Site " + id),
		Location: &domain.GeometryPoint{X: lon, Y: lat, Type: "MultiPoint"},
	}
}

func ids(hs []domain.Hotspot) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

func TestWithCoordinates_DropsUnlocated(t *testing.T) {
	in := []domain.Hotspot{spot("1", 43.6, -79.4), {ID: "2"}, spot("3", 43.7, -79.3)}
	assert.Equal(t, []string{"1", "3"}, ids(geo.WithCoordinates(in)))
	assert.Len(t, in, 3, "input must not be mutated")
}

func TestWithinBoundingBox(t *testing.T) {
	in := []domain.Hotspot{spot("ago", 43.6536, -79.3925), spot("north", 43.80, -79.40), {ID: "none"}}
	got := geo.WithinBoundingBox(in, domain.Bounds{MinLat: 43.60, MaxLat: 43.70, MinLon: -79.40, MaxLon: -79.38})
	assert.Equal(t, []string{"ago"}, ids(got))
}

func TestWithinBoundingBox_InclusiveEdges(t *testing.T) {
	in := []domain.Hotspot{spot("corner", 43.60, -79.40)}
	got := geo.WithinBoundingBox(in, domain.Bounds{MinLat: 43.60, MaxLat: 43.70, MinLon: -79.40, MaxLon: -79.38})
	assert.Len(t, got, 1)
}

func TestWithinBoundingBox_InvertedIsEmpty(t *testing.T) {
	in := []domain.Hotspot{spot("ago", 43.6536, -79.3925)}
	got := geo.WithinBoundingBox(in, domain.Bounds{MinLat: 43.70, MaxLat: 43.60, MinLon: -79.40, MaxLon: -79.38})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWithinRadius(t *testing.T) {
	in := []domain.Hotspot{spot("ago", 43.6536, -79.3925)}

	got := geo.WithinRadius(in, 43.6536, -79.3925, 1.0)
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].DistanceKm, 1e-9)

	// ~5 km north of the centre
	far := []domain.Hotspot{spot("far", 43.6536+5.0/111.195, -79.3925)}
	assert.Empty(t, geo.WithinRadius(far, 43.6536, -79.3925, 0.05))
	assert.Len(t, geo.WithinRadius(far, 43.6536, -79.3925, 5.1), 1)
}

func TestWithinRadius_NegativeRadiusIsEmpty(t *testing.T) {
	in := []domain.Hotspot{spot("ago", 43.6536, -79.3925)}
	assert.Empty(t, geo.WithinRadius(in, 43.6536, -79.3925, -1))
}

func TestHaversine_SymmetryAndIdentity(t *testing.T) {
	pts := [][2]float64{
		{43.6536, -79.3925}, {43.6677, -79.3948}, {-33.8688, 151.2093},
		{89.9, 0}, {-89.9, 179.9}, {0, -179.9}, {0, 179.9},
	}
	for _, a := range pts {
		assert.Zero(t, geo.HaversineKm(a[0], a[1], a[0], a[1]))
		for _, b := range pts {
			ab := geo.HaversineKm(a[0], a[1], b[0], b[1])
			ba := geo.HaversineKm(b[0], b[1], a[0], a[1])
			assert.InDelta(t, ab, ba, 1e-9)
			assert.False(t, math.IsNaN(ab))
		}
	}
}

func TestHaversine_KnownDistances(t *testing.T) {
	// AGO to ROM, roughly 1.57 km
	assert.InDelta(t, 1.57, geo.HaversineKm(43.6536, -79.3925, 43.6677, -79.3948), 0.02)
	// antipodes: half the circumference
	assert.InDelta(t, math.Pi*6371, geo.HaversineKm(0, 0, 0, 180), 1e-6)
	// across the antimeridian the short way round
	assert.InDelta(t, 22.24, geo.HaversineKm(0, 179.9, 0, -179.9), 0.01)
}

func TestHaversine_OutOfRangeDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { geo.HaversineKm(500, 900, -300, -1000) })
}

func TestProjections_AxisOrder(t *testing.T) {
	hs := []domain.Hotspot{spot("1", 43.6, -79.4), {ID: "2"}}

	pts := geo.ToMapPoints(hs)
	require.Len(t, pts, 1)
	assert.Equal(t, 43.6, pts[0].Latitude)
	assert.Equal(t, -79.4, pts[0].Longitude)

	b, err := json.Marshal(geo.ToFeatureCollection(hs))
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Type     string `json:"type"`
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(b, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "1", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-79.4, 43.6}, f.Geometry.Coordinates)
	assert.Equal(t, "Site 1", f.Properties["name"])
	assert.Nil(t, f.Properties["address"])
}

func TestFeatureCollection_Deterministic(t *testing.T) {
	hs := []domain.Hotspot{spot("1", 43.6, -79.4), spot("2", 43.7, -79.3)}
	a, err := json.Marshal(geo.ToFeatureCollection(hs))
	require.NoError(t, err)
	b, err := json.Marshal(geo.ToFeatureCollection(hs))
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.Equal(t, string(a), string(b))
}

func TestNearbyToMapPoints_CarriesDistance(t *testing.T) {
	ns := geo.WithinRadius([]domain.Hotspot{spot("1", 43.6, -79.4)}, 43.6, -79.4, 1)
	pts := geo.NearbyToMapPoints(ns)
	require.Len(t, pts, 1)
	require.NotNil(t, pts[0].DistanceKm)
	assert.InDelta(t, 0, *pts[0].DistanceKm, 1e-9)
}
