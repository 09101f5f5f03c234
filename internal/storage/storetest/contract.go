// Package storetest holds the behaviour every HotspotStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"culture_hotspots/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func seed() []domain.Hotspot {
	return []domain.Hotspot{
		{
			ID:            "1",
			Name:          ptr("Art Gallery of Ontario"),
			Address:       ptr("317 Dundas St W"),
			Type:          ptr("Museum"),
			Neighbourhood: ptr("Grange Park"),
			Interests:     ptr("Art, Architecture"),
			Loop:          ptr("Downtown"),
			Location:      &domain.GeometryPoint{X: -79.3925, Y: 43.6536, Type: "MultiPoint"},
			Geometry:      ptr(`{"coordinates": [[-79.3925, 43.6536]], "type": "MultiPoint"}`),
			Extras:        map[string]string{"test1": "x"},
		},
		{
			ID:            "2",
			Name:          ptr("Royal Ontario Museum"),
			Type:          ptr("Museum"),
			Neighbourhood: ptr("Annex"),
			Interests:     ptr("History"),
			Location:      &domain.GeometryPoint{X: -79.3948, Y: 43.6677, Type: "MultiPoint"},
		},
		{
			ID:   "10",
			Name: ptr("Harbourfront Centre"),
			Type: ptr("Arts Venue"),
		},
	}
}

// Run exercises newStore against the HotspotStore contract. newStore must
// return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) domain.HotspotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("put count find", func(t *testing.T) {
		s := newStore(t)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		require.Zero(t, n)

		for _, h := range seed() {
			require.NoError(t, s.Put(ctx, h))
		}
		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		h, found, err := s.FindByID(ctx, "1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Art Gallery of Ontario", *h.Name)
		require.NotNil(t, h.Location)
		assert.Equal(t, 43.6536, h.Location.Lat())
		assert.Equal(t, -79.3925, h.Location.Lon())
		assert.Equal(t, "MultiPoint", h.Location.Type)
		assert.Equal(t, map[string]string{"test1": "x"}, h.Extras)
		assert.Nil(t, h.Description)
		assert.False(t, h.CreatedAt.IsZero())
		assert.False(t, h.UpdatedAt.IsZero())

		h, found, err = s.FindByID(ctx, "10")
		require.NoError(t, err)
		require.True(t, found)
		assert.Nil(t, h.Location)

		_, found, err = s.FindByID(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("find all keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		for _, h := range seed() {
			require.NoError(t, s.Put(ctx, h))
		}
		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "10"}, ids(all))
	})

	t.Run("put replaces by id", func(t *testing.T) {
		s := newStore(t)
		for _, h := range seed() {
			require.NoError(t, s.Put(ctx, h))
		}
		upd := seed()[0]
		upd.Name = ptr("AGO")
		require.NoError(t, s.Put(ctx, upd))

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		h, _, err := s.FindByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "AGO", *h.Name)
	})

	t.Run("field queries", func(t *testing.T) {
		s := newStore(t)
		for _, h := range seed() {
			require.NoError(t, s.Put(ctx, h))
		}

		got, err := s.FindByField(ctx, domain.FieldType, "Museum")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(got))

		got, err = s.FindByField(ctx, domain.FieldType, "museum")
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.FindByFieldContaining(ctx, domain.FieldName, "ontario", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(got))

		got, err = s.FindByFieldContaining(ctx, domain.FieldName, "ontario", false)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = s.FindByFieldContaining(ctx, domain.FieldInterests, "ART", true)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))

		_, err = s.FindByField(ctx, domain.Field("geometry; DROP"), "x")
		assert.ErrorIs(t, err, domain.ErrUnknownField)
		_, err = s.FindByFieldContaining(ctx, domain.Field("nope"), "x", true)
		assert.ErrorIs(t, err, domain.ErrUnknownField)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStore(t)
		for _, h := range seed() {
			require.NoError(t, s.Put(ctx, h))
		}
		require.NoError(t, s.Clear(ctx))
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func ids(hs []domain.Hotspot) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}
